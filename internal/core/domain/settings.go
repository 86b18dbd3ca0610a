package domain

import "time"

// AIProvider identifies an embedding/summarizer backend. The set is closed:
// providers are selected once at construction, never by runtime string
// dispatch.
type AIProvider string

const (
	AIProviderOllama   AIProvider = "ollama"
	AIProviderLMStudio AIProvider = "lmstudio"
	AIProviderFake     AIProvider = "fake"
)

// ChatSettings holds per-deployment configuration for the retrieval and
// memory subsystems. Values are persisted via SettingsStore; environment
// overrides are resolved at the process boundary, never here.
type ChatSettings struct {
	// Web search augmentation
	AllowWebSearch        bool          `json:"allow_internet_search"`
	DebugLogging          bool          `json:"debug_logging"`
	SearchRateLimitPerMin int           `json:"search_rate_limit_per_min"`
	SearchCacheTTL        time.Duration `json:"search_cache_ttl"`

	// Retrieval
	TopK                 int           `json:"top_k"`
	TokenBudget          int           `json:"token_budget"`
	SimilarityThreshold  float64       `json:"similarity_threshold"`
	CacheTTL             time.Duration `json:"cache_ttl"`
	QueryTimeout         time.Duration `json:"query_timeout"`
	ApproxTokensPerChunk int           `json:"approx_tokens_per_chunk"`

	// Conversation memory
	TrimThreshold    int `json:"trim_threshold"`
	KeepLastN        int `json:"keep_last_n"`
	SummaryMaxTokens int `json:"summary_max_tokens"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultChatSettings returns the documented defaults
func DefaultChatSettings() *ChatSettings {
	return &ChatSettings{
		AllowWebSearch:        false,
		DebugLogging:          false,
		SearchRateLimitPerMin: 13,
		SearchCacheTTL:        120 * time.Second,
		TopK:                  5,
		TokenBudget:           1200,
		SimilarityThreshold:   0.2,
		CacheTTL:              300 * time.Second,
		QueryTimeout:          2 * time.Second,
		ApproxTokensPerChunk:  240,
		TrimThreshold:         40,
		KeepLastN:             10,
		SummaryMaxTokens:      400,
		UpdatedAt:             time.Now(),
	}
}

// AIConfig selects concrete embedding/summarizer backends at construction
type AIConfig struct {
	EmbeddingProvider  AIProvider `json:"embedding_provider"`
	EmbeddingModel     string     `json:"embedding_model"`
	SummarizerProvider AIProvider `json:"summarizer_provider"`
	SummarizerModel    string     `json:"summarizer_model"`
	BaseURL            string     `json:"base_url,omitempty"`
}
