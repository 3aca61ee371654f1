// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"sort"
	"strings"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// maxEmergingTopics caps the ranked topic list.
const maxEmergingTopics = 8

// maxAuthorNetwork caps the ranked author list.
const maxAuthorNetwork = 10

// authorsPerSource limits how many of a source's listed authors count
// toward the author network.
const authorsPerSource = 2

// AnalyzeTrends derives trend analytics from the validated set. Topic
// and author rankings break frequency ties by first-encountered order,
// keeping the output deterministic.
func AnalyzeTrends(sources []types.Source, concepts []string) types.TrendAnalysis {
	trends := types.TrendAnalysis{
		EmergingTopics:      []types.EmergingTopic{},
		PublicationVelocity: map[string]int{},
		CitationTrends:      map[string]float64{},
		AuthorNetworks:      []types.AuthorFrequency{},
	}

	// Topic frequency by raw substring match over title+summary.
	counts := make([]int, len(concepts))
	for _, src := range sources {
		text := strings.ToLower(src.Title) + " " + strings.ToLower(src.Summary)
		for i, concept := range concepts {
			if strings.Contains(text, strings.ToLower(concept)) {
				counts[i]++
			}
		}
	}
	order := make([]int, len(concepts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })
	for _, i := range order {
		if counts[i] == 0 || len(trends.EmergingTopics) == maxEmergingTopics {
			break
		}
		trends.EmergingTopics = append(trends.EmergingTopics, types.EmergingTopic{
			Topic:     concepts[i],
			Frequency: counts[i],
			Trend:     "rising",
		})
	}

	// Publication velocity and per-year mean citations.
	yearTotals := map[string]int{}
	for _, src := range sources {
		year, ok := leadingYearToken(src.Published)
		if !ok {
			continue
		}
		trends.PublicationVelocity[year]++
		yearTotals[year] += src.CitationCount
	}
	for year, n := range trends.PublicationVelocity {
		trends.CitationTrends[year] = float64(yearTotals[year]) / float64(n)
	}

	// Author network over each source's first listed authors.
	var authorOrder []string
	authorCounts := map[string]int{}
	for _, src := range sources {
		authors := src.Authors
		if len(authors) > authorsPerSource {
			authors = authors[:authorsPerSource]
		}
		for _, author := range authors {
			if _, seen := authorCounts[author]; !seen {
				authorOrder = append(authorOrder, author)
			}
			authorCounts[author]++
		}
	}
	sort.SliceStable(authorOrder, func(a, b int) bool {
		return authorCounts[authorOrder[a]] > authorCounts[authorOrder[b]]
	})
	if len(authorOrder) > maxAuthorNetwork {
		authorOrder = authorOrder[:maxAuthorNetwork]
	}
	for _, author := range authorOrder {
		trends.AuthorNetworks = append(trends.AuthorNetworks, types.AuthorFrequency{
			Author: author,
			Papers: authorCounts[author],
		})
	}

	return trends
}

// CreateAlertTriggers derives monitoring alerts from the run's concepts
// and query. Multi-word concepts get high priority since they are more
// specific signals.
func CreateAlertTriggers(concepts []string) []types.AlertTrigger {
	triggers := []types.AlertTrigger{}

	capped := concepts
	if len(capped) > maxEmergingTopics {
		capped = capped[:maxEmergingTopics]
	}
	for _, concept := range capped {
		priority := "medium"
		if len(strings.Fields(concept)) > 1 {
			priority = "high"
		}
		triggers = append(triggers, types.AlertTrigger{
			Type:     "keyword_match",
			Keyword:  concept,
			Priority: priority,
			Action:   "notify",
		})
	}

	triggers = append(triggers,
		types.AlertTrigger{
			Type:      "citation_threshold",
			Threshold: 50,
			Priority:  "high",
			Action:    "alert",
		},
		types.AlertTrigger{
			Type:          "new_publication",
			TimeframeDays: 7,
			Priority:      "medium",
			Action:        "daily_digest",
		},
	)

	return triggers
}
