package driving

import (
	"context"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// ContextService assembles retrieval context for a chat turn
type ContextService interface {
	// RetrieveContext runs the cache -> retriever -> filter/rank -> budget
	// pipeline for a query. It never fails the turn: degraded retrieval
	// yields a context with Used=false or a partial result.
	RetrieveContext(ctx context.Context, sessionID, query string, sources []domain.SourceType) *domain.RetrievedContext
}
