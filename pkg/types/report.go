// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Contradiction records opposing evidence detected across the validated
// source set.
type Contradiction struct {
	// Type tags the kind of disagreement (e.g. "effectiveness_debate").
	Type string `json:"type" yaml:"type"`

	// Description states the positive and negative counts.
	Description string `json:"description" yaml:"description"`

	// Severity is a coarse tag; the lexical detector always emits "medium".
	Severity string `json:"severity" yaml:"severity"`

	// SourcesPositive lists up to 3 titles with positive-signal language.
	SourcesPositive []string `json:"sources_positive" yaml:"sources_positive"`

	// SourcesNegative lists up to 3 titles with negative-signal language.
	SourcesNegative []string `json:"sources_negative" yaml:"sources_negative"`
}

// ResearchGap is a gap hypothesis generated by the language model.
type ResearchGap struct {
	Gap        string `json:"gap" yaml:"gap"`
	Importance string `json:"importance" yaml:"importance"`
}

// CitedSource is one entry in the citation map's ranked list.
type CitedSource struct {
	Title     string `json:"title" yaml:"title"`
	Citations int    `json:"citations" yaml:"citations"`
	URL       string `json:"url" yaml:"url"`
}

// CitationMap is the citation rollup over the validated source set.
// TotalSources equals the sum of the ByType counts.
type CitationMap struct {
	TotalSources int `json:"total_sources" yaml:"total_sources"`

	// ByType counts sources per SourceType.
	ByType map[string]int `json:"by_type" yaml:"by_type"`

	// ByYear counts sources per publication year. Sources with an
	// unparsable date are absent.
	ByYear map[string]int `json:"by_year" yaml:"by_year"`

	// TopCited lists every source, sorted by citation count descending
	// then title ascending.
	TopCited []CitedSource `json:"top_cited" yaml:"top_cited"`
}

// EmergingTopic is a concept ranked by mention frequency.
type EmergingTopic struct {
	Topic     string `json:"topic" yaml:"topic"`
	Frequency int    `json:"frequency" yaml:"frequency"`

	// Trend is a fixed "rising" label, not a computed direction.
	Trend string `json:"trend" yaml:"trend"`
}

// AuthorFrequency counts papers per author.
type AuthorFrequency struct {
	Author string `json:"author" yaml:"author"`
	Papers int    `json:"papers" yaml:"papers"`
}

// TrendAnalysis holds the derived trend analytics for a validated set.
type TrendAnalysis struct {
	// EmergingTopics ranks the top concepts by mention frequency.
	EmergingTopics []EmergingTopic `json:"emerging_topics" yaml:"emerging_topics"`

	// PublicationVelocity counts publications per year.
	PublicationVelocity map[string]int `json:"publication_velocity" yaml:"publication_velocity"`

	// CitationTrends maps year to mean citation count, for years with at
	// least one dated source.
	CitationTrends map[string]float64 `json:"citation_trends" yaml:"citation_trends"`

	// AuthorNetworks lists the most frequent authors, counting only each
	// source's first two listed authors.
	AuthorNetworks []AuthorFrequency `json:"author_networks" yaml:"author_networks"`
}

// AlertTrigger configures an ongoing-monitoring alert derived from the
// run's concepts and query.
type AlertTrigger struct {
	Type          string `json:"type" yaml:"type"`
	Keyword       string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Threshold     int    `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	TimeframeDays int    `json:"timeframe_days,omitempty" yaml:"timeframe_days,omitempty"`
	Priority      string `json:"priority" yaml:"priority"`
	Action        string `json:"action" yaml:"action"`
}
