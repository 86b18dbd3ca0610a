package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// MockVectorIndex is an in-memory VectorIndex for testing. Hits are returned
// in insertion order unless explicit distances are attached.
type MockVectorIndex struct {
	mu      sync.RWMutex
	hits    []driven.IndexHit
	failAll bool
	delay   time.Duration

	queryCount int
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{}
}

func (m *MockVectorIndex) Query(ctx context.Context, vector []float32, filter driven.IndexFilter, limit int) ([]driven.IndexHit, error) {
	m.mu.Lock()
	m.queryCount++
	failAll := m.failAll
	delay := m.delay
	m.mu.Unlock()

	if failAll {
		return nil, domain.ErrServiceUnavailable
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []driven.IndexHit
	for _, h := range m.hits {
		if matches(h, filter) {
			out = append(out, h)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockVectorIndex) Add(ctx context.Context, ids []string, documents []string, metadatas []domain.ChunkMetadata, embeddings [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range ids {
		m.hits = append(m.hits, driven.IndexHit{
			ID:       ids[i],
			Text:     documents[i],
			Metadata: metadatas[i],
		})
	}
	return nil
}

func (m *MockVectorIndex) Get(ctx context.Context, filter driven.IndexFilter) ([]driven.IndexHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []driven.IndexHit
	for _, h := range m.hits {
		if matches(h, filter) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *MockVectorIndex) Delete(ctx context.Context, filter driven.IndexFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []driven.IndexHit
	for _, h := range m.hits {
		if !matches(h, filter) {
			kept = append(kept, h)
		}
	}
	m.hits = kept
	return nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error {
	return nil
}

func matches(h driven.IndexHit, f driven.IndexFilter) bool {
	if f.SessionID != "" && h.Metadata.SessionID != f.SessionID {
		return false
	}
	if f.FileID != "" && h.Metadata.FileID != f.FileID {
		return false
	}
	return true
}

// Helper methods for testing

// AddHit inserts a prepared hit, optionally with a distance
func (m *MockVectorIndex) AddHit(hit driven.IndexHit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits = append(m.hits, hit)
}

// SetFailAll makes every Query return an error
func (m *MockVectorIndex) SetFailAll(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = fail
}

// SetDelay makes every Query block for d before returning
func (m *MockVectorIndex) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// QueryCount returns how many times Query has been called
func (m *MockVectorIndex) QueryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queryCount
}
