package driven

import (
	"context"
)

// SummarizerService condenses conversation history. Implementations may
// fail or time out; callers fall back to a heuristic summary and never
// surface the error.
type SummarizerService interface {
	// Summarize generates a summary of content. maxTokens is a hint; the
	// model may not respect it exactly.
	Summarize(ctx context.Context, content string, maxTokens int) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the summarizer service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the summarizer service
	Close() error
}
