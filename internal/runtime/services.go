package runtime

import (
	"context"
	"sync"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable AI services.
// The embedding and summarizer backends can be swapped at runtime; the
// retrieval and memory subsystems always read the current instance through
// this registry. Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	embeddingService  driven.EmbeddingService
	summarizerService driven.SummarizerService
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// SummarizerService returns the current summarizer service (may be nil)
func (s *Services) SummarizerService() driven.SummarizerService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summarizerService
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetSummarizerService updates the summarizer service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetSummarizerService(svc driven.SummarizerService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summarizerService != nil {
		_ = s.summarizerService.Close()
	}

	s.summarizerService = svc
	s.config.SetSummarizerAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.summarizerService != nil {
		_ = s.summarizerService.Close()
		s.summarizerService = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetSummarizerAvailable(false)

	return nil
}

// ValidateAndSetEmbedding validates connectivity before setting the
// embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetSummarizer validates connectivity before setting the
// summarizer service
func (s *Services) ValidateAndSetSummarizer(ctx context.Context, svc driven.SummarizerService) error {
	if svc == nil {
		s.SetSummarizerService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetSummarizerService(svc)
	return nil
}
