// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"fmt"
	"strings"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// positiveTerms and negativeTerms drive the lexical contradiction
// heuristic. A source may land in both buckets. This is coarse on
// purpose; false positives are acceptable.
var positiveTerms = []string{"improve", "enhance", "effective", "successful", "increase"}

var negativeTerms = []string{"not", "no", "without", "fails", "decrease", "poor"}

// DetectContradictions buckets sources by positive and negative signal
// language over lowercased title+summary text. When both buckets are
// non-empty it emits a single medium-severity contradiction carrying up
// to 3 supporting titles per side.
func DetectContradictions(sources []types.Source) []types.Contradiction {
	var positive, negative []string

	for _, src := range sources {
		text := strings.ToLower(src.Title) + " " + strings.ToLower(src.Summary)
		if containsAnyWord(text, positiveTerms) {
			positive = append(positive, src.Title)
		}
		if containsAnyWord(text, negativeTerms) {
			negative = append(negative, src.Title)
		}
	}

	if len(positive) == 0 || len(negative) == 0 {
		return []types.Contradiction{}
	}

	return []types.Contradiction{{
		Type: "effectiveness_debate",
		Description: fmt.Sprintf("Mixed conclusions: %d positive vs %d negative assessments.",
			len(positive), len(negative)),
		Severity:        "medium",
		SourcesPositive: firstN(positive, 3),
		SourcesNegative: firstN(negative, 3),
	}}
}

func containsAnyWord(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
