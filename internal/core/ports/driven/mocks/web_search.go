package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// MockWebSearchProvider is a canned WebSearchProvider for testing
type MockWebSearchProvider struct {
	mu       sync.Mutex
	results  []domain.WebSearchResult
	failNext bool
	calls    int
}

// NewMockWebSearchProvider creates a new MockWebSearchProvider
func NewMockWebSearchProvider(results []domain.WebSearchResult) *MockWebSearchProvider {
	return &MockWebSearchProvider{results: results}
}

func (m *MockWebSearchProvider) Search(ctx context.Context, query string) ([]domain.WebSearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failNext {
		m.failNext = false
		return nil, domain.ErrServiceUnavailable
	}
	return append([]domain.WebSearchResult(nil), m.results...), nil
}

func (m *MockWebSearchProvider) Name() string {
	return "mock"
}

// SetFailNext makes the next Search call fail
func (m *MockWebSearchProvider) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// Calls returns how many times Search has been invoked
func (m *MockWebSearchProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockSearchCache is an in-memory SearchCache for testing
type MockSearchCache struct {
	mu      sync.Mutex
	entries map[string][]domain.WebSearchResult
}

// NewMockSearchCache creates a new MockSearchCache
func NewMockSearchCache() *MockSearchCache {
	return &MockSearchCache{entries: make(map[string][]domain.WebSearchResult)}
}

func (m *MockSearchCache) Get(ctx context.Context, query string) ([]domain.WebSearchResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results, ok := m.entries[query]
	return results, ok, nil
}

func (m *MockSearchCache) Put(ctx context.Context, query string, results []domain.WebSearchResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[query] = results
	return nil
}

// MockSearchLimiter is a SearchLimiter with a fixed answer
type MockSearchLimiter struct {
	mu    sync.Mutex
	allow bool
	calls int
}

// NewMockSearchLimiter creates a limiter that always answers allow
func NewMockSearchLimiter(allow bool) *MockSearchLimiter {
	return &MockSearchLimiter{allow: allow}
}

func (m *MockSearchLimiter) Allow(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.allow, nil
}

// SetAllow changes the limiter's answer
func (m *MockSearchLimiter) SetAllow(allow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allow = allow
}
