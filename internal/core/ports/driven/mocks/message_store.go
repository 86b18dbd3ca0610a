package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// MockMessageStore is an in-memory MessageStore for testing
type MockMessageStore struct {
	mu       sync.RWMutex
	messages []*domain.Message
}

// NewMockMessageStore creates a new MockMessageStore
func NewMockMessageStore() *MockMessageStore {
	return &MockMessageStore{}
}

func (m *MockMessageStore) Append(ctx context.Context, messages []*domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		copied := *msg
		m.messages = append(m.messages, &copied)
	}
	return nil
}

func (m *MockMessageStore) ListBySession(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Message
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			copied := *msg
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockMessageStore) CountBySession(ctx context.Context, sessionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (m *MockMessageStore) MarkTrimmed(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for _, msg := range m.messages {
		if _, ok := set[msg.ID]; ok {
			msg.IsTrimmed = true
		}
	}
	return nil
}

func (m *MockMessageStore) ListTrimmed(ctx context.Context, sessionID string, limit int) ([]*domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Message
	for _, msg := range m.messages {
		if msg.SessionID == sessionID && msg.IsTrimmed {
			copied := *msg
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockMessageStore) SetTrimmed(ctx context.Context, id string, trimmed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID == id {
			msg.IsTrimmed = trimmed
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockMessageStore) DeleteBySession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.Message
	for _, msg := range m.messages {
		if msg.SessionID != sessionID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}

// Helper methods for testing

// TrimmedCount returns the number of trimmed messages for a session
func (m *MockMessageStore) TrimmedCount(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, msg := range m.messages {
		if msg.SessionID == sessionID && msg.IsTrimmed {
			count++
		}
	}
	return count
}
