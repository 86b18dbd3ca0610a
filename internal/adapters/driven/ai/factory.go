package ai

import (
	"fmt"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// NewEmbeddingService creates an embedding backend from configuration
func NewEmbeddingService(cfg domain.AIConfig) (driven.EmbeddingService, error) {
	switch cfg.EmbeddingProvider {
	case domain.AIProviderOllama:
		return NewOllamaEmbedding(cfg.BaseURL, cfg.EmbeddingModel)
	case domain.AIProviderFake:
		return NewFakeEmbedding()
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, cfg.EmbeddingProvider)
	}
}

// NewSummarizerService creates a summarizer backend from configuration
func NewSummarizerService(cfg domain.AIConfig) (driven.SummarizerService, error) {
	switch cfg.SummarizerProvider {
	case domain.AIProviderOllama:
		return NewOllamaSummarizer(cfg.BaseURL, cfg.SummarizerModel)
	case domain.AIProviderLMStudio:
		return NewLMStudioSummarizer(cfg.BaseURL, cfg.SummarizerModel)
	case domain.AIProviderFake:
		return NewFakeSummarizer()
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, cfg.SummarizerProvider)
	}
}
