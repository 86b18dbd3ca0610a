package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Ensure Bing implements WebSearchProvider
var _ driven.WebSearchProvider = (*Bing)(nil)

// Bing queries the Bing Web Search API. It requires a subscription key
// and is only added to the provider chain when one is configured.
type Bing struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewBing creates a new Bing search provider
func NewBing(baseURL, apiKey string) *Bing {
	if baseURL == "" {
		baseURL = "https://api.bing.microsoft.com"
	}
	return &Bing{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

func (b *Bing) Name() string {
	return "bing"
}

func (b *Bing) Search(ctx context.Context, query string) ([]domain.WebSearchResult, error) {
	endpoint := fmt.Sprintf("%s/v7.0/search?q=%s&count=%d", b.baseURL, url.QueryEscape(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bing returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode bing response: %w", err)
	}

	results := make([]domain.WebSearchResult, 0, len(parsed.WebPages.Value))
	for _, page := range parsed.WebPages.Value {
		if len(results) >= maxResults {
			break
		}
		if page.URL == "" {
			continue
		}
		results = append(results, domain.WebSearchResult{
			Title:   page.Name,
			URL:     page.URL,
			Snippet: page.Snippet,
		})
	}

	return results, nil
}
