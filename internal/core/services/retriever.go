package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
	"github.com/parlance-labs/recall-core/internal/runtime"
)

// globalTimeoutHeadroom is reserved from the outer deadline before the
// global-scope sub-query runs, so both sub-queries stay bounded within the
// caller's timeout.
const globalTimeoutHeadroom = 10 * time.Millisecond

// DualScopeRetriever runs session-scoped and global-scoped vector queries
// and merges them. Every failure path degrades to a (possibly empty) list;
// no error ever escapes a retrieval.
type DualScopeRetriever struct {
	index    driven.VectorIndex
	services *runtime.Services
	logger   *slog.Logger
}

// NewDualScopeRetriever creates a new DualScopeRetriever.
// The embedding service is read through the runtime registry on every call,
// so backend swaps take effect immediately.
func NewDualScopeRetriever(index driven.VectorIndex, services *runtime.Services, logger *slog.Logger) *DualScopeRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &DualScopeRetriever{
		index:    index,
		services: services,
		logger:   logger,
	}
}

// Retrieve returns up to topK chunks for query: session-scoped results
// first, then global-scoped results for whatever the session scope left
// unfilled. The session sub-query gets the full timeout; the global
// sub-query gets the remaining time minus headroom and is skipped entirely
// when the session scope already filled topK.
func (r *DualScopeRetriever) Retrieve(ctx context.Context, query, sessionID string, topK int, timeout time.Duration) []domain.Chunk {
	if topK <= 0 || r.index == nil {
		return nil
	}

	embedder := r.services.EmbeddingService()
	if embedder == nil {
		return nil
	}
	vector, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Debug("query embedding failed, skipping retrieval", "error", err)
		return nil
	}

	deadline := time.Now().Add(timeout)

	session := r.queryScope(ctx, vector, sessionID, topK, timeout)

	remaining := topK - len(session)
	if remaining <= 0 {
		return session
	}

	globalTimeout := time.Until(deadline) - globalTimeoutHeadroom
	if globalTimeout <= 0 {
		return session
	}

	global := r.queryScope(ctx, vector, domain.GlobalScope, remaining, globalTimeout)
	return append(session, global...)
}

// queryScope runs one bounded sub-query as an independently cancellable
// task. Timeouts and index errors zero this scope's contribution; they never
// fail the turn.
func (r *DualScopeRetriever) queryScope(ctx context.Context, vector []float32, scope string, limit int, timeout time.Duration) []domain.Chunk {
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type queryResult struct {
		hits []driven.IndexHit
		err  error
	}
	resultCh := make(chan queryResult, 1)

	go func() {
		hits, err := r.index.Query(qctx, vector, driven.IndexFilter{SessionID: scope}, limit)
		resultCh <- queryResult{hits: hits, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			r.logger.Debug("scope query degraded to empty", "scope", scope, "error", res.err)
			return nil
		}
		return chunksFromHits(res.hits)
	case <-qctx.Done():
		r.logger.Debug("scope query timed out", "scope", scope, "timeout", timeout)
		return nil
	}
}

// chunksFromHits converts index hits into chunks, mapping distances to
// similarity scores
func chunksFromHits(hits []driven.IndexHit) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(hits))
	for _, h := range hits {
		chunks = append(chunks, domain.Chunk{
			ID:       h.ID,
			Text:     h.Text,
			Metadata: h.Metadata,
			Score:    domain.SimilarityFromDistance(h.Distance),
		})
	}
	return chunks
}
