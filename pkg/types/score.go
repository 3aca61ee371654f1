// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Confidence is the tier attached to a relevance judgment.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// RelevanceJudgment is the external collaborator's verdict on whether a
// source is relevant to the research query.
type RelevanceJudgment struct {
	// IsRelevant reports whether the source addresses the query.
	IsRelevant bool `json:"is_relevant" yaml:"is_relevant"`

	// Confidence qualifies the judgment: HIGH, MEDIUM, or LOW.
	Confidence Confidence `json:"confidence" yaml:"confidence"`

	// Reason is a one-sentence justification.
	Reason string `json:"reason" yaml:"reason"`
}

// ScoreRecord is the credibility assessment of a single source.
type ScoreRecord struct {
	// SourceID identifies the scored source.
	SourceID string `json:"source_id" yaml:"source_id"`

	// SourceTitle is carried for report rendering.
	SourceTitle string `json:"source_title" yaml:"source_title"`

	// Score is the credibility score, clamped to [0, 100].
	Score int `json:"credibility_score" yaml:"credibility_score"`

	// Grade is the letter grade derived from Score.
	Grade string `json:"grade" yaml:"grade"`

	// Factors is the audit trail of applied scoring factors, in
	// application order. Reproducible byte-for-byte for a given source
	// and scoring table.
	Factors []string `json:"factors" yaml:"factors"`

	// Relevance is the external relevance judgment merged in by the
	// validation gate.
	Relevance RelevanceJudgment `json:"relevance" yaml:"relevance"`
}

// ScoreDistribution buckets accepted scores into named quality bands.
type ScoreDistribution struct {
	// Excellent counts scores >= 85.
	Excellent int `json:"excellent" yaml:"excellent"`

	// Good counts scores in [70, 85).
	Good int `json:"good" yaml:"good"`

	// Fair counts scores in [55, 70).
	Fair int `json:"fair" yaml:"fair"`
}

// CredibilitySummary aggregates the accepted score records of one
// validation run. It is recomputed on every run, never carried over.
type CredibilitySummary struct {
	// TotalValidated is the number of accepted sources.
	TotalValidated int `json:"total_validated" yaml:"total_validated"`

	// AverageScore is the mean accepted score rounded to 2 decimals.
	AverageScore float64 `json:"average_quality_score" yaml:"average_quality_score"`

	// Distribution histograms the accepted scores.
	Distribution ScoreDistribution `json:"score_distribution" yaml:"score_distribution"`
}
