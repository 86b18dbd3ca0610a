package mocks

import (
	"context"
	"sync"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// MockKnowledgeStore is an in-memory KnowledgeStore for testing
type MockKnowledgeStore struct {
	mu      sync.RWMutex
	entries []*domain.KnowledgeEntry
}

// NewMockKnowledgeStore creates a new MockKnowledgeStore
func NewMockKnowledgeStore() *MockKnowledgeStore {
	return &MockKnowledgeStore{}
}

func (m *MockKnowledgeStore) Append(ctx context.Context, entries []*domain.KnowledgeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		copied := *e
		m.entries = append(m.entries, &copied)
	}
	return nil
}

func (m *MockKnowledgeStore) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.KnowledgeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.KnowledgeEntry
	// Most recent first: walk the append-only log backwards
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].SessionID == sessionID {
			copied := *m.entries[i]
			out = append(out, &copied)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Helper methods for testing

// All returns every stored entry
func (m *MockKnowledgeStore) All() []*domain.KnowledgeEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.KnowledgeEntry(nil), m.entries...)
}
