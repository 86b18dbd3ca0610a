package driven

import (
	"context"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// MessageStore persists the per-session message log. The memory manager is
// the only writer of trimmed flags.
type MessageStore interface {
	// Append stores messages in order
	Append(ctx context.Context, messages []*domain.Message) error

	// ListBySession returns all messages for a session ordered by creation
	// time ascending
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Message, error)

	// CountBySession returns the number of stored messages for a session,
	// trimmed or not
	CountBySession(ctx context.Context, sessionID string) (int, error)

	// MarkTrimmed sets is_trimmed on the given messages. Idempotent:
	// already-trimmed messages are left as-is.
	MarkTrimmed(ctx context.Context, ids []string) error

	// ListTrimmed returns up to limit currently-trimmed messages for a
	// session, most recent first
	ListTrimmed(ctx context.Context, sessionID string, limit int) ([]*domain.Message, error)

	// SetTrimmed updates the trimmed flag of a single message
	SetTrimmed(ctx context.Context, id string, trimmed bool) error

	// DeleteBySession removes all messages for a session
	DeleteBySession(ctx context.Context, sessionID string) error
}
