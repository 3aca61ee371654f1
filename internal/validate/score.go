// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate scores discovered sources for credibility and filters
// them through a corpus-relative acceptance gate.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// CitationStep maps a minimum citation count to its bonus.
type CitationStep struct {
	Min   int `json:"min" yaml:"min"`
	Bonus int `json:"bonus" yaml:"bonus"`
}

// RecencyStep maps a maximum age in whole years to its bonus.
type RecencyStep struct {
	MaxAgeYears int `json:"max_age_years" yaml:"max_age_years"`
	Bonus       int `json:"bonus" yaml:"bonus"`
}

// ScoringTable names every additive factor of the credibility score. The
// magic numbers are heuristic and intentionally preserved as-is; changing
// them changes every score in a corpus, so they live in one place.
type ScoringTable struct {
	// Source kind bonuses.
	PeerReviewedBonus int `json:"peer_reviewed_bonus" yaml:"peer_reviewed_bonus"`
	PreprintBonus     int `json:"preprint_bonus" yaml:"preprint_bonus"`
	WebBonus          int `json:"web_bonus" yaml:"web_bonus"`

	// Domain reputation bonuses for recognized URL patterns.
	AcademicDomainBonus int `json:"academic_domain_bonus" yaml:"academic_domain_bonus"`
	GovDomainBonus      int `json:"gov_domain_bonus" yaml:"gov_domain_bonus"`

	// CitationSteps is checked in order; the first step whose Min the
	// citation count meets supplies the bonus.
	CitationSteps []CitationStep `json:"citation_steps" yaml:"citation_steps"`

	// WebNoCitationFloor is granted to web sources without citation data
	// instead of the zero-citation step. Absence of a count is not
	// evidence of low quality for that kind.
	WebNoCitationFloor int `json:"web_no_citation_floor" yaml:"web_no_citation_floor"`

	// RecencySteps is checked in order; the first step whose MaxAgeYears
	// the source's age fits supplies the bonus.
	RecencySteps     []RecencyStep `json:"recency_steps" yaml:"recency_steps"`
	OldSourceBonus   int           `json:"old_source_bonus" yaml:"old_source_bonus"`
	NoDatePenalty    int           `json:"no_date_penalty" yaml:"no_date_penalty"`

	// Authorship.
	ManyAuthorsBonus    int `json:"many_authors_bonus" yaml:"many_authors_bonus"`
	SomeAuthorsBonus    int `json:"some_authors_bonus" yaml:"some_authors_bonus"`
	NoAuthorsPenalty    int `json:"no_authors_penalty" yaml:"no_authors_penalty"`
	NoAuthorsPenaltyWeb int `json:"no_authors_penalty_web" yaml:"no_authors_penalty_web"`

	// Content quality.
	LongSummaryBonus     int `json:"long_summary_bonus" yaml:"long_summary_bonus"`
	MediumSummaryBonus   int `json:"medium_summary_bonus" yaml:"medium_summary_bonus"`
	ShortSummaryBonus    int `json:"short_summary_bonus" yaml:"short_summary_bonus"`
	EmptySummaryPenalty  int `json:"empty_summary_penalty" yaml:"empty_summary_penalty"`
	SpamPenalty          int `json:"spam_penalty" yaml:"spam_penalty"`
	ThinContentPenalty   int `json:"thin_content_penalty" yaml:"thin_content_penalty"`
	MinSubstantiveWords  int `json:"min_substantive_words" yaml:"min_substantive_words"`

	// URL validity.
	MissingURLPenalty int `json:"missing_url_penalty" yaml:"missing_url_penalty"`
	BadSchemePenalty  int `json:"bad_scheme_penalty" yaml:"bad_scheme_penalty"`
}

// DefaultScoringTable returns the standard scoring table.
func DefaultScoringTable() ScoringTable {
	return ScoringTable{
		PeerReviewedBonus: 28,
		PreprintBonus:     25,
		WebBonus:          15,

		AcademicDomainBonus: 5,
		GovDomainBonus:      4,

		CitationSteps: []CitationStep{
			{Min: 500, Bonus: 30},
			{Min: 100, Bonus: 25},
			{Min: 50, Bonus: 20},
			{Min: 10, Bonus: 15},
			{Min: 1, Bonus: 5},
		},
		WebNoCitationFloor: 2,

		RecencySteps: []RecencyStep{
			{MaxAgeYears: 1, Bonus: 20},
			{MaxAgeYears: 3, Bonus: 15},
			{MaxAgeYears: 5, Bonus: 10},
			{MaxAgeYears: 10, Bonus: 8},
		},
		OldSourceBonus: 5,
		NoDatePenalty:  3,

		ManyAuthorsBonus:    5,
		SomeAuthorsBonus:    3,
		NoAuthorsPenalty:    3,
		NoAuthorsPenaltyWeb: 1,

		LongSummaryBonus:    20,
		MediumSummaryBonus:  15,
		ShortSummaryBonus:   5,
		EmptySummaryPenalty: 10,
		SpamPenalty:         8,
		ThinContentPenalty:  5,
		MinSubstantiveWords: 10,

		MissingURLPenalty: 5,
		BadSchemePenalty:  2,
	}
}

// spamPhrases are indicators of promotional rather than research content.
var spamPhrases = []string{
	"click here",
	"buy now",
	"subscribe now",
	"limited time offer",
	"sponsored content",
}

// academicDomainPatterns mark URLs from academic institutions.
var academicDomainPatterns = []string{".edu/", ".edu", ".ac.", "university"}

// govDomainPatterns mark URLs from government institutions.
var govDomainPatterns = []string{".gov/", ".gov", ".mil"}

// scoreNow is time.Now, substituted by tests for stable recency scoring.
var scoreNow = time.Now

// ScoreSource computes the credibility score for a single source. The
// score starts at 0, accumulates the independent additive factors of the
// table, and is clamped to [0, 100]. Every applied factor is appended to
// the record's factor list in application order; given the same source
// and table the list is reproducible byte-for-byte.
func ScoreSource(src types.Source, table ScoringTable) types.ScoreRecord {
	score := 0
	var factors []string

	apply := func(delta int, format string, args ...any) {
		score += delta
		factors = append(factors, fmt.Sprintf(format, args...))
	}

	// Source kind.
	switch src.SourceType {
	case types.SourceSemanticScholar:
		apply(table.PeerReviewedBonus, "Peer-reviewed (+%d)", table.PeerReviewedBonus)
	case types.SourceArxiv:
		apply(table.PreprintBonus, "arXiv preprint (+%d)", table.PreprintBonus)
	default:
		apply(table.WebBonus, "Web source (+%d)", table.WebBonus)
	}

	lowerURL := strings.ToLower(src.URL)
	if matchesAny(lowerURL, academicDomainPatterns) {
		apply(table.AcademicDomainBonus, "Academic domain (+%d)", table.AcademicDomainBonus)
	} else if matchesAny(lowerURL, govDomainPatterns) {
		apply(table.GovDomainBonus, "Government domain (+%d)", table.GovDomainBonus)
	}

	// Citations.
	if src.CitationCount == 0 && src.SourceType == types.SourceWeb {
		apply(table.WebNoCitationFloor, "No citation data (+%d)", table.WebNoCitationFloor)
	} else {
		bonus := 0
		for _, step := range table.CitationSteps {
			if src.CitationCount >= step.Min {
				bonus = step.Bonus
				break
			}
		}
		apply(bonus, "Citations: %d (+%d)", src.CitationCount, bonus)
	}

	// Recency.
	if year, ok := leadingYear(src.Published); ok {
		age := scoreNow().Year() - year
		if age < 0 {
			age = 0
		}
		bonus := table.OldSourceBonus
		for _, step := range table.RecencySteps {
			if age <= step.MaxAgeYears {
				bonus = step.Bonus
				break
			}
		}
		apply(bonus, "Age: %dy (+%d)", age, bonus)
	} else {
		apply(-table.NoDatePenalty, "Unparsable date (-%d)", table.NoDatePenalty)
	}

	// Authorship. Web sources often omit author metadata by design, so
	// their penalty is smaller.
	switch n := len(src.Authors); {
	case n >= 3:
		apply(table.ManyAuthorsBonus, "Authors: %d (+%d)", n, table.ManyAuthorsBonus)
	case n >= 1:
		apply(table.SomeAuthorsBonus, "Authors: %d (+%d)", n, table.SomeAuthorsBonus)
	case src.SourceType == types.SourceWeb:
		apply(-table.NoAuthorsPenaltyWeb, "No authors (-%d)", table.NoAuthorsPenaltyWeb)
	default:
		apply(-table.NoAuthorsPenalty, "No authors (-%d)", table.NoAuthorsPenalty)
	}

	// Content quality: length bonus plus an independent penalty pass.
	switch n := len(src.Summary); {
	case n > 200:
		apply(table.LongSummaryBonus, "Substantial summary (+%d)", table.LongSummaryBonus)
	case n > 100:
		apply(table.MediumSummaryBonus, "Moderate summary (+%d)", table.MediumSummaryBonus)
	case n > 0:
		apply(table.ShortSummaryBonus, "Brief summary (+%d)", table.ShortSummaryBonus)
	}

	lowerSummary := strings.ToLower(src.Summary)
	if strings.TrimSpace(src.Summary) == "" {
		apply(-table.EmptySummaryPenalty, "Empty summary (-%d)", table.EmptySummaryPenalty)
	} else {
		if matchesAny(lowerSummary, spamPhrases) {
			apply(-table.SpamPenalty, "Spam indicators (-%d)", table.SpamPenalty)
		}
		if substantiveWords(src.Summary) < table.MinSubstantiveWords {
			apply(-table.ThinContentPenalty, "Thin content (-%d)", table.ThinContentPenalty)
		}
	}

	// URL validity.
	if src.URL == "" {
		apply(-table.MissingURLPenalty, "Missing URL (-%d)", table.MissingURLPenalty)
	} else if !strings.HasPrefix(lowerURL, "http://") && !strings.HasPrefix(lowerURL, "https://") {
		apply(-table.BadSchemePenalty, "Non-HTTP URL (-%d)", table.BadSchemePenalty)
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return types.ScoreRecord{
		SourceID:    src.ID,
		SourceTitle: src.Title,
		Score:       score,
		Grade:       gradeFor(score),
		Factors:     factors,
	}
}

// gradeFor maps a score to its letter grade via fixed breakpoints.
func gradeFor(score int) string {
	switch {
	case score >= 85:
		return "A - Excellent"
	case score >= 70:
		return "B - Good"
	case score >= 55:
		return "C - Fair"
	case score >= 40:
		return "D - Poor"
	default:
		return "F - Very Poor"
	}
}

// leadingYear parses the year token before the first hyphen of a partial
// ISO date string.
func leadingYear(published string) (int, bool) {
	token, _, _ := strings.Cut(strings.TrimSpace(published), "-")
	year, err := strconv.Atoi(token)
	if err != nil || year < 1000 || year > 9999 {
		return 0, false
	}
	return year, true
}

// substantiveWords counts words longer than 3 characters.
func substantiveWords(text string) int {
	count := 0
	for _, w := range strings.Fields(text) {
		if len(w) > 3 {
			count++
		}
	}
	return count
}

func matchesAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
