package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore implements driven.SettingsStore using PostgreSQL.
// Settings are a singleton row; durations are stored in seconds
// (milliseconds for the query timeout).
type SettingsStore struct {
	db *DB
}

// NewSettingsStore creates a new SettingsStore
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// GetChatSettings retrieves the persisted settings, or defaults when none
// have been saved yet
func (s *SettingsStore) GetChatSettings(ctx context.Context) (*domain.ChatSettings, error) {
	query := `
		SELECT allow_web_search, debug_logging, search_rate_limit_per_min,
			   search_cache_ttl_seconds, top_k, token_budget, similarity_threshold,
			   cache_ttl_seconds, query_timeout_ms, approx_tokens_per_chunk,
			   trim_threshold, keep_last_n, summary_max_tokens, updated_at
		FROM chat_settings
		WHERE id = 1
	`

	var settings domain.ChatSettings
	var searchCacheTTL, cacheTTL, queryTimeoutMS int

	err := s.db.QueryRowContext(ctx, query).Scan(
		&settings.AllowWebSearch,
		&settings.DebugLogging,
		&settings.SearchRateLimitPerMin,
		&searchCacheTTL,
		&settings.TopK,
		&settings.TokenBudget,
		&settings.SimilarityThreshold,
		&cacheTTL,
		&queryTimeoutMS,
		&settings.ApproxTokensPerChunk,
		&settings.TrimThreshold,
		&settings.KeepLastN,
		&settings.SummaryMaxTokens,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.DefaultChatSettings(), nil
	}
	if err != nil {
		return nil, err
	}

	settings.SearchCacheTTL = time.Duration(searchCacheTTL) * time.Second
	settings.CacheTTL = time.Duration(cacheTTL) * time.Second
	settings.QueryTimeout = time.Duration(queryTimeoutMS) * time.Millisecond

	return &settings, nil
}

// SaveChatSettings persists settings as the singleton row
func (s *SettingsStore) SaveChatSettings(ctx context.Context, settings *domain.ChatSettings) error {
	query := `
		INSERT INTO chat_settings (id, allow_web_search, debug_logging, search_rate_limit_per_min,
								   search_cache_ttl_seconds, top_k, token_budget, similarity_threshold,
								   cache_ttl_seconds, query_timeout_ms, approx_tokens_per_chunk,
								   trim_threshold, keep_last_n, summary_max_tokens, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			allow_web_search = EXCLUDED.allow_web_search,
			debug_logging = EXCLUDED.debug_logging,
			search_rate_limit_per_min = EXCLUDED.search_rate_limit_per_min,
			search_cache_ttl_seconds = EXCLUDED.search_cache_ttl_seconds,
			top_k = EXCLUDED.top_k,
			token_budget = EXCLUDED.token_budget,
			similarity_threshold = EXCLUDED.similarity_threshold,
			cache_ttl_seconds = EXCLUDED.cache_ttl_seconds,
			query_timeout_ms = EXCLUDED.query_timeout_ms,
			approx_tokens_per_chunk = EXCLUDED.approx_tokens_per_chunk,
			trim_threshold = EXCLUDED.trim_threshold,
			keep_last_n = EXCLUDED.keep_last_n,
			summary_max_tokens = EXCLUDED.summary_max_tokens,
			updated_at = EXCLUDED.updated_at
	`

	settings.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, query,
		settings.AllowWebSearch,
		settings.DebugLogging,
		settings.SearchRateLimitPerMin,
		int(settings.SearchCacheTTL/time.Second),
		settings.TopK,
		settings.TokenBudget,
		settings.SimilarityThreshold,
		int(settings.CacheTTL/time.Second),
		int(settings.QueryTimeout/time.Millisecond),
		settings.ApproxTokensPerChunk,
		settings.TrimThreshold,
		settings.KeepLastN,
		settings.SummaryMaxTokens,
		settings.UpdatedAt,
	)
	return err
}
