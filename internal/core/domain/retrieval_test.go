package domain

import (
	"testing"
	"time"
)

func TestRetrievalRequestNormalize_Defaults(t *testing.T) {
	settings := DefaultChatSettings()

	req := RetrievalRequest{Query: "what is in the report", SessionID: "s1"}
	req.Normalize(settings)

	if req.TopK != settings.TopK {
		t.Errorf("expected TopK %d, got %d", settings.TopK, req.TopK)
	}
	if req.TokenBudget != settings.TokenBudget {
		t.Errorf("expected TokenBudget %d, got %d", settings.TokenBudget, req.TokenBudget)
	}
	if req.SimilarityThreshold != settings.SimilarityThreshold {
		t.Errorf("expected threshold %f, got %f", settings.SimilarityThreshold, req.SimilarityThreshold)
	}
	if req.Timeout != settings.QueryTimeout {
		t.Errorf("expected timeout %v, got %v", settings.QueryTimeout, req.Timeout)
	}
	if len(req.AllowedSources) != 3 {
		t.Errorf("expected full allow-list fallback, got %v", req.AllowedSources)
	}
}

func TestRetrievalRequestNormalize_FiltersUnknownSources(t *testing.T) {
	settings := DefaultChatSettings()

	req := RetrievalRequest{
		Query:          "query",
		AllowedSources: []SourceType{SourceImage, "video", "spreadsheet"},
	}
	req.Normalize(settings)

	if len(req.AllowedSources) != 1 || req.AllowedSources[0] != SourceImage {
		t.Errorf("expected [image], got %v", req.AllowedSources)
	}

	// All-unknown falls back to the full set
	req = RetrievalRequest{Query: "query", AllowedSources: []SourceType{"video"}}
	req.Normalize(settings)
	if len(req.AllowedSources) != 3 {
		t.Errorf("expected full set fallback, got %v", req.AllowedSources)
	}
}

func TestRetrievalRequestNormalize_KeepsExplicitValues(t *testing.T) {
	settings := DefaultChatSettings()

	req := RetrievalRequest{
		Query:               "query",
		TopK:                7,
		TokenBudget:         500,
		SimilarityThreshold: 0.9,
		Timeout:             100 * time.Millisecond,
	}
	req.Normalize(settings)

	if req.TopK != 7 || req.TokenBudget != 500 || req.SimilarityThreshold != 0.9 {
		t.Errorf("explicit values overwritten: %+v", req)
	}
	if req.Timeout != 100*time.Millisecond {
		t.Errorf("expected explicit timeout kept, got %v", req.Timeout)
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := EmptyContext()
	if ctx.Used {
		t.Error("expected Used false")
	}
	if ctx.Citations == nil || ctx.Chunks == nil || ctx.PerSource == nil {
		t.Error("expected non-nil empty collections")
	}
	if len(ctx.Citations) != 0 || len(ctx.Chunks) != 0 || len(ctx.PerSource) != 0 {
		t.Error("expected empty collections")
	}
}
