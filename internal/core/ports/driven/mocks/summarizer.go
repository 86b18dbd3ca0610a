package mocks

import (
	"context"
	"sync"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// MockSummarizerService is a mock implementation of SummarizerService for
// testing
type MockSummarizerService struct {
	mu       sync.Mutex
	summary  string
	failNext bool
	calls    []string
}

// NewMockSummarizerService creates a new MockSummarizerService
func NewMockSummarizerService() *MockSummarizerService {
	return &MockSummarizerService{summary: "mock summary"}
}

func (m *MockSummarizerService) Summarize(ctx context.Context, content string, maxTokens int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, content)
	if m.failNext {
		m.failNext = false
		return "", domain.ErrServiceUnavailable
	}
	return m.summary, nil
}

func (m *MockSummarizerService) Model() string {
	return "mock-summarizer"
}

func (m *MockSummarizerService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockSummarizerService) Close() error {
	return nil
}

// Helper methods for testing

// SetSummary fixes the summary returned by Summarize
func (m *MockSummarizerService) SetSummary(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary = s
}

// SetFailNext makes the next Summarize call fail
func (m *MockSummarizerService) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// Calls returns the contents passed to Summarize so far
func (m *MockSummarizerService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
