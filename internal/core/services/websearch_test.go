package services

import (
	"context"
	"testing"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven/mocks"
)

func newTestAugmenter(allowSearch bool, providers ...driven.WebSearchProvider) (*mocks.MockSearchCache, *mocks.MockSearchLimiter, *mocks.MockSettingsStore, *SearchAugmenter) {
	cache := mocks.NewMockSearchCache()
	limiter := mocks.NewMockSearchLimiter(true)
	settings := mocks.NewMockSettingsStore()

	s := domain.DefaultChatSettings()
	s.AllowWebSearch = allowSearch
	_ = settings.SaveChatSettings(context.Background(), s)

	return cache, limiter, settings, NewSearchAugmenter(providers, cache, limiter, settings, nil)
}

func TestSearchAugmenter_ShouldSearch(t *testing.T) {
	_, _, _, aug := newTestAugmenter(true)

	tests := []struct {
		query string
		want  bool
	}{
		{"what is the latest on the merger", true},
		{"any News about go releases", true},
		{"what happened today", true},
		{"current interest rates", true},
		{"recent papers on retrieval", true},
		{"explain chapter three", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := aug.ShouldSearch(context.Background(), tt.query); got != tt.want {
			t.Errorf("ShouldSearch(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestSearchAugmenter_ShouldSearchDisabled(t *testing.T) {
	_, _, _, aug := newTestAugmenter(false)

	if aug.ShouldSearch(context.Background(), "the latest news today") {
		t.Error("ShouldSearch = true with web search disabled")
	}
}

func TestSearchAugmenter_Search(t *testing.T) {
	results := []domain.WebSearchResult{{Title: "t", URL: "https://example.com", Snippet: "s"}}
	provider := mocks.NewMockWebSearchProvider(results)
	_, _, _, aug := newTestAugmenter(true, provider)

	got := aug.Search(context.Background(), "latest news")
	if len(got) != 1 || got[0].Title != "t" {
		t.Fatalf("Search returned %v, want the provider results", got)
	}
}

func TestSearchAugmenter_CacheHitSkipsProvider(t *testing.T) {
	provider := mocks.NewMockWebSearchProvider([]domain.WebSearchResult{{Title: "t"}})
	_, _, _, aug := newTestAugmenter(true, provider)

	aug.Search(context.Background(), "latest news")
	aug.Search(context.Background(), "latest news")

	if provider.Calls() != 1 {
		t.Errorf("provider called %d times, want 1 (second call cached)", provider.Calls())
	}
}

func TestSearchAugmenter_EmptyResultsCached(t *testing.T) {
	provider := mocks.NewMockWebSearchProvider(nil)
	_, _, _, aug := newTestAugmenter(true, provider)

	aug.Search(context.Background(), "latest nothing")
	aug.Search(context.Background(), "latest nothing")

	if provider.Calls() != 1 {
		t.Errorf("provider called %d times for a dead query, want 1", provider.Calls())
	}
}

func TestSearchAugmenter_RateLimited(t *testing.T) {
	provider := mocks.NewMockWebSearchProvider([]domain.WebSearchResult{{Title: "t"}})
	_, limiter, _, aug := newTestAugmenter(true, provider)
	limiter.SetAllow(false)

	got := aug.Search(context.Background(), "latest news")
	if got != nil {
		t.Errorf("rate-limited search returned %d results, want none", len(got))
	}
	if provider.Calls() != 0 {
		t.Error("provider called despite rate limit")
	}
}

func TestSearchAugmenter_ProviderChain(t *testing.T) {
	failing := mocks.NewMockWebSearchProvider(nil)
	failing.SetFailNext(true)
	empty := mocks.NewMockWebSearchProvider(nil)
	working := mocks.NewMockWebSearchProvider([]domain.WebSearchResult{{Title: "t"}})
	_, _, _, aug := newTestAugmenter(true, failing, empty, working)

	got := aug.Search(context.Background(), "latest news")

	// First failed, second was empty, third answered
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1 from the last provider", len(got))
	}
	if working.Calls() != 1 {
		t.Error("fallback provider was never reached")
	}
}

func TestSearchAugmenter_EmptyQuery(t *testing.T) {
	provider := mocks.NewMockWebSearchProvider([]domain.WebSearchResult{{Title: "t"}})
	_, _, _, aug := newTestAugmenter(true, provider)

	if got := aug.Search(context.Background(), "   "); got != nil {
		t.Error("blank query produced results")
	}
	if provider.Calls() != 0 {
		t.Error("blank query reached the provider")
	}
}
