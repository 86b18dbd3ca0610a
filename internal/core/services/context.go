package services

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
	"github.com/parlance-labs/recall-core/internal/core/ports/driving"
)

// minRetrievalQueryLen is the cheap should-skip heuristic: queries shorter
// than this are considered too short to warrant retrieval. Evaluated before,
// and independently of, the similarity-threshold filter.
const minRetrievalQueryLen = 10

// Ensure contextService implements ContextService
var _ driving.ContextService = (*contextService)(nil)

// contextService runs the retrieval pipeline:
// cache -> dual-scope retriever -> filter/rank -> token budget
type contextService struct {
	cache     *RetrievalCache
	retriever *DualScopeRetriever
	files     driven.FileStore
	settings  driven.SettingsStore
	logger    *slog.Logger
}

// NewContextService creates a new ContextService
func NewContextService(
	cache *RetrievalCache,
	retriever *DualScopeRetriever,
	files driven.FileStore,
	settings driven.SettingsStore,
	logger *slog.Logger,
) driving.ContextService {
	if logger == nil {
		logger = slog.Default()
	}
	return &contextService{
		cache:     cache,
		retriever: retriever,
		files:     files,
		settings:  settings,
		logger:    logger,
	}
}

// RetrieveContext assembles retrieval context for one turn. It never fails:
// every degraded path produces a valid (possibly unused) context.
func (s *contextService) RetrieveContext(ctx context.Context, sessionID, query string, sources []domain.SourceType) *domain.RetrievedContext {
	settings, err := s.settings.GetChatSettings(ctx)
	if err != nil {
		s.logger.Debug("settings unavailable, using defaults", "error", err)
		settings = domain.DefaultChatSettings()
	}

	req := domain.RetrievalRequest{
		Query:          query,
		SessionID:      sessionID,
		AllowedSources: sources,
	}
	req.Normalize(settings)

	shouldSkip := utf8.RuneCountInString(query) < minRetrievalQueryLen

	key := retrievalCacheKey(sessionID, query, req.AllowedSources)
	chunks := s.cache.GetOrCompute(key, func() []domain.Chunk {
		return s.retriever.Retrieve(ctx, query, sessionID, req.TopK, req.Timeout)
	})

	softDeleted, err := s.files.SoftDeletedIDs(ctx)
	if err != nil {
		// Best effort: without the soft-delete set the turn still proceeds
		s.logger.Debug("soft-deleted lookup failed", "error", err)
		softDeleted = nil
	}

	outcome := filterAndRank(chunks, softDeleted, req.SimilarityThreshold, req.AllowedSources)

	// A too-short query with nothing past the filters is a skip, which is
	// distinct from "no results found". When matches survive anyway, they
	// are still returned.
	if shouldSkip && outcome.filteredCount == 0 {
		return domain.EmptyContext()
	}

	selected := selectWithinBudget(outcome.ranked, req.TokenBudget, req.TopK, settings.ApproxTokensPerChunk)
	citations := buildCitations(ctx, s.files, selected)

	return &domain.RetrievedContext{
		Used:      len(selected) > 0,
		Citations: citations,
		Chunks:    selected,
		PerSource: outcome.perSource,
	}
}
