package driving

import (
	"context"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// MemoryService manages bounded conversation memory for a session
type MemoryService interface {
	// TrimAndSummarize trims older messages once the session grows past the
	// threshold: extracts facts, persists a rolling summary, and marks the
	// older messages trimmed. Returns the summary text, or "" when the
	// session is still below the threshold.
	TrimAndSummarize(ctx context.Context, sessionID string) (string, error)

	// Restore un-trims up to count messages, most recent first, and returns
	// the number actually restored
	Restore(ctx context.Context, sessionID string, count int) (int, error)

	// Summary returns the last stored summary for a session
	Summary(ctx context.Context, sessionID string) (string, error)

	// Knowledge returns up to limit captured facts, most recent first
	Knowledge(ctx context.Context, sessionID string, limit int) ([]*domain.KnowledgeEntry, error)
}
