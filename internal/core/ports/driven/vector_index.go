package driven

import (
	"context"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// IndexFilter restricts index operations to matching chunks.
// Zero-value fields are ignored.
type IndexFilter struct {
	SessionID string
	FileID    string
}

// IndexHit is one candidate returned by a vector query. Distance is nil
// when the index cannot provide one.
type IndexHit struct {
	ID       string
	Text     string
	Metadata domain.ChunkMetadata
	Distance *float64
}

// VectorIndex is the vector-store boundary. Insert/query primitives are
// assumed given; the retrieval subsystem never depends on a concrete engine.
type VectorIndex interface {
	// Query returns up to limit candidates nearest to vector, restricted by
	// filter. Ordering is by ascending distance.
	Query(ctx context.Context, vector []float32, filter IndexFilter, limit int) ([]IndexHit, error)

	// Add indexes documents with precomputed embeddings. All slices must be
	// the same length.
	Add(ctx context.Context, ids []string, documents []string, metadatas []domain.ChunkMetadata, embeddings [][]float32) error

	// Get returns all hits matching filter, without scoring
	Get(ctx context.Context, filter IndexFilter) ([]IndexHit, error)

	// Delete removes all chunks matching filter
	Delete(ctx context.Context, filter IndexFilter) error

	// HealthCheck verifies the index is reachable
	HealthCheck(ctx context.Context) error
}
