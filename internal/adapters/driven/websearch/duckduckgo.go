package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// maxResults caps how many results a provider returns per query
const maxResults = 10

// Ensure DuckDuckGo implements WebSearchProvider
var _ driven.WebSearchProvider = (*DuckDuckGo)(nil)

// DuckDuckGo queries the DuckDuckGo instant answer API. It needs no API
// key, which makes it the default provider in the chain.
type DuckDuckGo struct {
	baseURL string
	client  *http.Client
}

// NewDuckDuckGo creates a new DuckDuckGo search provider
func NewDuckDuckGo(baseURL string) *DuckDuckGo {
	if baseURL == "" {
		baseURL = "https://api.duckduckgo.com"
	}
	return &DuckDuckGo{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type duckDuckGoResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Heading       string `json:"Heading"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (d *DuckDuckGo) Name() string {
	return "duckduckgo"
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]domain.WebSearchResult, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1", d.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("duckduckgo returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed duckDuckGoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode duckduckgo response: %w", err)
	}

	var results []domain.WebSearchResult

	if parsed.AbstractText != "" {
		title := parsed.Heading
		if title == "" {
			title = query
		}
		results = append(results, domain.WebSearchResult{
			Title:   title,
			URL:     parsed.AbstractURL,
			Snippet: parsed.AbstractText,
		})
	}

	for _, topic := range parsed.RelatedTopics {
		if len(results) >= maxResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		// Topic text reads "Title - snippet"; fall back to the whole
		// text when the separator is absent.
		title, snippet := topic.Text, ""
		if idx := strings.Index(topic.Text, " - "); idx > 0 {
			title = topic.Text[:idx]
			snippet = topic.Text[idx+3:]
		}
		results = append(results, domain.WebSearchResult{
			Title:   title,
			URL:     topic.FirstURL,
			Snippet: snippet,
		})
	}

	return results, nil
}
