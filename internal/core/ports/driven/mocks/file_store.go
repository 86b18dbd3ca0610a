package mocks

import (
	"context"
	"sync"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// MockFileStore is an in-memory FileStore for testing
type MockFileStore struct {
	mu    sync.RWMutex
	files map[string]*domain.File
}

// NewMockFileStore creates a new MockFileStore
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{files: make(map[string]*domain.File)}
}

func (m *MockFileStore) Create(ctx context.Context, file *domain.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *file
	m.files[file.ID] = &copied
	return nil
}

func (m *MockFileStore) Get(ctx context.Context, id string) (*domain.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (m *MockFileStore) List(ctx context.Context, sessionID string) ([]*domain.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.File
	for _, f := range m.files {
		if sessionID == "" || f.SessionID == "" || f.SessionID == sessionID {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockFileStore) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.SoftDeleted = true
	return nil
}

func (m *MockFileStore) SoftDeletedIDs(ctx context.Context) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]struct{})
	for id, f := range m.files {
		if f.SoftDeleted {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (m *MockFileStore) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string)
	for _, id := range ids {
		if f, ok := m.files[id]; ok {
			out[id] = f.Name
		}
	}
	return out, nil
}
