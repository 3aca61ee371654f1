// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/research-pipeline/internal/httputil"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,year,citationCount,url,venue,publicationDate,paperId"

// SemanticScholarBackend queries the Semantic Scholar API.
type SemanticScholarBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// Search queries the Semantic Scholar API and returns sources. Rate
// limiting (HTTP 429) is retried with backoff.
func (b *SemanticScholarBackend) Search(ctx context.Context, query string, limit int, cfg types.SearchConfig) ([]types.Source, error) {
	if query == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var results []types.Source
	for _, paper := range sr.Data {
		if paper.Title == "" {
			continue
		}

		paperURL := paper.URL
		if paperURL == "" && paper.PaperID != "" {
			paperURL = "https://www.semanticscholar.org/paper/" + paper.PaperID
		}

		published := paper.PublicationDate
		if published == "" && paper.Year > 0 {
			published = fmt.Sprintf("%d", paper.Year)
		}

		s := types.Source{
			ID:            sourceID("scholar", paper.Title),
			Title:         paper.Title,
			Summary:       paper.Abstract,
			FullText:      paper.Abstract,
			URL:           paperURL,
			Published:     published,
			SourceType:    types.SourceSemanticScholar,
			CitationCount: paper.CitationCount,
			Metadata: map[string]any{
				"venue":    paper.Venue,
				"paper_id": paper.PaperID,
			},
		}

		for _, a := range paper.Authors {
			s.Authors = append(s.Authors, a.Name)
		}

		results = append(results, s)
	}
	return results, nil
}

// Semantic Scholar JSON structures.
type semanticResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string           `json:"paperId"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	Year            int              `json:"year"`
	CitationCount   int              `json:"citationCount"`
	URL             string           `json:"url"`
	Venue           string           `json:"venue"`
	PublicationDate string           `json:"publicationDate"`
	Authors         []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}
