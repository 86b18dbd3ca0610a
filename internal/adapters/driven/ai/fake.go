package ai

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Ensure FakeEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*FakeEmbedding)(nil)

// FakeEmbedding is a deterministic, dependency-free embedding backend for
// local development and demos. Vectors are derived from a hash of the text,
// so identical texts always embed identically.
type FakeEmbedding struct {
	dimensions int
}

// NewFakeEmbedding creates a new FakeEmbedding
func NewFakeEmbedding() (driven.EmbeddingService, error) {
	return &FakeEmbedding{dimensions: 8}, nil
}

func (e *FakeEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *FakeEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.vector(query), nil
}

func (e *FakeEmbedding) Dimensions() int {
	return e.dimensions
}

func (e *FakeEmbedding) Model() string {
	return "fake-embedding"
}

func (e *FakeEmbedding) HealthCheck(ctx context.Context) error {
	return nil
}

func (e *FakeEmbedding) Close() error {
	return nil
}

func (e *FakeEmbedding) vector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, e.dimensions)
	for i := range vec {
		seed = seed*1103515245 + 12345
		vec[i] = float32(seed%1000) / 1000.0
	}
	return vec
}

// Ensure FakeSummarizer implements SummarizerService
var _ driven.SummarizerService = (*FakeSummarizer)(nil)

// FakeSummarizer produces a crude extractive summary without any model:
// the first sentence of the content, truncated to roughly maxTokens words.
type FakeSummarizer struct{}

// NewFakeSummarizer creates a new FakeSummarizer
func NewFakeSummarizer() (driven.SummarizerService, error) {
	return &FakeSummarizer{}, nil
}

func (s *FakeSummarizer) Summarize(ctx context.Context, content string, maxTokens int) (string, error) {
	words := strings.Fields(content)
	if maxTokens > 0 && len(words) > maxTokens {
		words = words[:maxTokens]
	}
	return strings.Join(words, " "), nil
}

func (s *FakeSummarizer) Model() string {
	return "fake-summarizer"
}

func (s *FakeSummarizer) Ping(ctx context.Context) error {
	return nil
}

func (s *FakeSummarizer) Close() error {
	return nil
}
