// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceType identifies which backend discovered a source.
type SourceType string

const (
	SourceArxiv           SourceType = "arxiv"
	SourceSemanticScholar SourceType = "semantic_scholar"
	SourceWeb             SourceType = "web"
)

// Source holds metadata for a discovered research item. Sources are
// created by the discovery stage and read-only afterwards.
type Source struct {
	// ID is a stable identifier derived from the source's native
	// identifier or URL (e.g. "arxiv_2301.07041", "web_3f2a9c1b").
	ID string `json:"id" yaml:"id"`

	// Title is the source title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in backend order. May be empty.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Summary is the abstract or content snippet.
	Summary string `json:"summary" yaml:"summary"`

	// FullText is the full content where available, otherwise the summary.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// URL is the canonical link to the source.
	URL string `json:"url" yaml:"url"`

	// Published is the publication date as reported by the backend,
	// normally "YYYY-MM-DD" but possibly a bare year or empty.
	Published string `json:"published" yaml:"published"`

	// Categories lists subject tags (e.g. arXiv categories).
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// SourceType records which backend produced this source.
	SourceType SourceType `json:"source_type" yaml:"source_type"`

	// CitationCount is the citation count where the backend reports one.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// Metadata carries backend-specific extras (venue, arXiv ID, rank).
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// DiscoveryMetadata summarizes a discovery run.
type DiscoveryMetadata struct {
	// TotalFound is the number of results before deduplication.
	TotalFound int `json:"total_found" yaml:"total_found"`

	// UniqueSources is the number of results after deduplication.
	UniqueSources int `json:"unique_sources" yaml:"unique_sources"`

	// BackendsSearched lists the backends that returned results, sorted.
	BackendsSearched []string `json:"backends_searched" yaml:"backends_searched"`
}
