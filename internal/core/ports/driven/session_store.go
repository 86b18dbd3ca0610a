package driven

import (
	"context"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// SessionStore persists chat sessions and their rolling summaries
type SessionStore interface {
	// Create stores a new session
	Create(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID. Returns domain.ErrSessionNotFound when
	// absent.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// List returns all sessions ordered by creation time ascending
	List(ctx context.Context) ([]*domain.Session, error)

	// Delete removes a session
	Delete(ctx context.Context, id string) error

	// SaveSummary overwrites the rolling summary for a session
	SaveSummary(ctx context.Context, sessionID string, summary string) error

	// GetSummary returns the stored summary, empty when none exists
	GetSummary(ctx context.Context, sessionID string) (string, error)
}
