// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/research-pipeline/internal/httputil"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so
// tests can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

// TavilyBackend queries the Tavily web search API. Web results carry no
// citation counts or author metadata.
type TavilyBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *TavilyBackend) Name() string { return "web" }

// Search queries Tavily and returns web sources. Results without a URL
// are dropped.
func (b *TavilyBackend) Search(ctx context.Context, query string, limit int, cfg types.SearchConfig) ([]types.Source, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("tavily API key not configured")
	}

	body, err := json.Marshal(tavilyRequest{
		Query:       query,
		SearchDepth: "advanced",
		MaxResults:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Authorization", "Bearer "+b.APIKey)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("tavily API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily API returned HTTP %d", resp.StatusCode)
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing tavily response: %w", err)
	}

	var results []types.Source
	for i, r := range tr.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, types.Source{
			ID:         sourceID("web", r.URL),
			Title:      r.Title,
			Summary:    r.Content,
			FullText:   r.Content,
			URL:        r.URL,
			SourceType: types.SourceWeb,
			Metadata: map[string]any{
				"position": i + 1,
				"score":    r.Score,
			},
		})
	}
	return results, nil
}

// Tavily JSON structures.
type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
