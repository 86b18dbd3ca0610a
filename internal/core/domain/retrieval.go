package domain

import "time"

// RetrievalRequest configures a single context retrieval
type RetrievalRequest struct {
	Query               string        `json:"query"`
	SessionID           string        `json:"session_id"`
	AllowedSources      []SourceType  `json:"allowed_sources,omitempty"`
	TopK                int           `json:"top_k"`
	TokenBudget         int           `json:"token_budget"`
	SimilarityThreshold float64       `json:"similarity_threshold"`
	Timeout             time.Duration `json:"-"`
}

// Normalize applies configured defaults and enforces request invariants:
// TopK must be positive and the source allow-list non-empty. Unknown source
// types are filtered out; if nothing survives, the full default set is used.
func (r *RetrievalRequest) Normalize(settings *ChatSettings) {
	if r.TopK <= 0 {
		r.TopK = settings.TopK
	}
	if r.TokenBudget <= 0 {
		r.TokenBudget = settings.TokenBudget
	}
	if r.SimilarityThreshold == 0 {
		r.SimilarityThreshold = settings.SimilarityThreshold
	}
	if r.Timeout <= 0 {
		r.Timeout = settings.QueryTimeout
	}

	var allowed []SourceType
	for _, s := range r.AllowedSources {
		if s.Valid() {
			allowed = append(allowed, s)
		}
	}
	if len(allowed) == 0 {
		allowed = AllSourceTypes()
	}
	r.AllowedSources = allowed
}

// RetrievedContext is the outcome of the retrieval pipeline for one turn.
// Used is false when retrieval was skipped or nothing survived filtering;
// callers treat these two cases identically.
type RetrievedContext struct {
	Used      bool                    `json:"used"`
	Citations []string                `json:"citations"`
	Chunks    []Chunk                 `json:"chunks"`
	PerSource map[SourceType][]Chunk  `json:"per_source"`
}

// EmptyContext returns a RetrievedContext reporting no retrieval
func EmptyContext() *RetrievedContext {
	return &RetrievedContext{
		Used:      false,
		Citations: []string{},
		Chunks:    []Chunk{},
		PerSource: map[SourceType][]Chunk{},
	}
}
