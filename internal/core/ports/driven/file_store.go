package driven

import (
	"context"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// FileStore persists file records. Files are soft-deleted: their chunks
// stay in the vector index but are excluded from retrieval.
type FileStore interface {
	// Create stores a new file record
	Create(ctx context.Context, file *domain.File) error

	// Get retrieves a file by ID. Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id string) (*domain.File, error)

	// List returns files visible to a session: global files plus files
	// bound to sessionID. Empty sessionID lists everything.
	List(ctx context.Context, sessionID string) ([]*domain.File, error)

	// SoftDelete marks a file deleted without removing it
	SoftDelete(ctx context.Context, id string) error

	// SoftDeletedIDs returns the IDs of all soft-deleted files
	SoftDeletedIDs(ctx context.Context) (map[string]struct{}, error)

	// DisplayNames resolves file IDs to display names. Unresolvable IDs are
	// absent from the result.
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}
