package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// searchTriggerWords mark a query as asking about current events, which
// dense retrieval over stale documents cannot answer.
var searchTriggerWords = []string{"latest", "news", "today", "current", "recent"}

// SearchAugmenter decorates a chat turn with web search results when the
// query looks time-sensitive. Every failure path degrades to no results;
// a broken search backend never breaks chat.
type SearchAugmenter struct {
	providers []driven.WebSearchProvider
	cache     driven.SearchCache
	limiter   driven.SearchLimiter
	settings  driven.SettingsStore
	logger    *slog.Logger
}

// NewSearchAugmenter creates a SearchAugmenter. Providers are tried in
// order; the first non-empty result set wins.
func NewSearchAugmenter(
	providers []driven.WebSearchProvider,
	cache driven.SearchCache,
	limiter driven.SearchLimiter,
	settings driven.SettingsStore,
	logger *slog.Logger,
) *SearchAugmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchAugmenter{
		providers: providers,
		cache:     cache,
		limiter:   limiter,
		settings:  settings,
		logger:    logger,
	}
}

// ShouldSearch reports whether query warrants a web search: the feature
// must be enabled and the query must contain a trigger word
// (case-insensitive substring match).
func (a *SearchAugmenter) ShouldSearch(ctx context.Context, query string) bool {
	settings, err := a.settings.GetChatSettings(ctx)
	if err != nil {
		settings = domain.DefaultChatSettings()
	}
	if !settings.AllowWebSearch {
		return false
	}

	lower := strings.ToLower(query)
	for _, word := range searchTriggerWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// Search returns cached or fresh results for query. Rate-limit denial,
// provider failure, and cache failure all yield nil without error.
func (a *SearchAugmenter) Search(ctx context.Context, query string) []domain.WebSearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if results, ok, err := a.cache.Get(ctx, query); err == nil && ok {
		return results
	} else if err != nil {
		a.logger.Debug("search cache read failed", "error", err)
	}

	allowed, err := a.limiter.Allow(ctx)
	if err != nil {
		a.logger.Debug("search limiter failed", "error", err)
		return nil
	}
	if !allowed {
		a.logger.Debug("web search rate limited", "query", query)
		return nil
	}

	settings, err := a.settings.GetChatSettings(ctx)
	if err != nil {
		settings = domain.DefaultChatSettings()
	}

	var results []domain.WebSearchResult
	for _, p := range a.providers {
		out, err := p.Search(ctx, query)
		if err != nil {
			a.logger.Debug("web search provider failed", "provider", p.Name(), "error", err)
			continue
		}
		if len(out) > 0 {
			results = out
			break
		}
	}

	// Empty results are cached too, so a dead query does not hammer providers
	if err := a.cache.Put(ctx, query, results, settings.SearchCacheTTL); err != nil {
		a.logger.Debug("search cache write failed", "error", err)
	}

	return results
}
