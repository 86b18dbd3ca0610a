package mocks

import (
	"context"
	"sync"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// MockSettingsStore is an in-memory SettingsStore for testing
type MockSettingsStore struct {
	mu       sync.RWMutex
	settings *domain.ChatSettings
}

// NewMockSettingsStore creates a new MockSettingsStore
func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{}
}

func (m *MockSettingsStore) GetChatSettings(ctx context.Context) (*domain.ChatSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return domain.DefaultChatSettings(), nil
	}
	copied := *m.settings
	return &copied, nil
}

func (m *MockSettingsStore) SaveChatSettings(ctx context.Context, settings *domain.ChatSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *settings
	m.settings = &copied
	return nil
}
