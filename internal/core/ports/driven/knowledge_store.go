package driven

import (
	"context"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// KnowledgeStore persists durable facts extracted during summarization.
// Entries are append-only.
type KnowledgeStore interface {
	// Append stores knowledge entries
	Append(ctx context.Context, entries []*domain.KnowledgeEntry) error

	// ListBySession returns up to limit entries for a session, most recent
	// first
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.KnowledgeEntry, error)
}
