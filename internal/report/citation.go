// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report compiles human-readable outputs from a completed run:
// the executive summary, the detailed report, citation rollups, and the
// monitoring configuration.
package report

import (
	"sort"
	"strings"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// BuildCitationMap rolls validated sources up into per-type and
// per-year frequency maps plus a ranked list. The ranked list includes
// every source, sorted by citation count descending then title
// ascending, so the ordering is fully deterministic.
func BuildCitationMap(sources []types.Source) types.CitationMap {
	cm := types.CitationMap{
		TotalSources: len(sources),
		ByType:       map[string]int{},
		ByYear:       map[string]int{},
		TopCited:     []types.CitedSource{},
	}

	for _, src := range sources {
		kind := string(src.SourceType)
		if kind == "" {
			kind = "unknown"
		}
		cm.ByType[kind]++

		if year, ok := leadingYearToken(src.Published); ok {
			cm.ByYear[year]++
		}

		cm.TopCited = append(cm.TopCited, types.CitedSource{
			Title:     src.Title,
			Citations: src.CitationCount,
			URL:       src.URL,
		})
	}

	sort.SliceStable(cm.TopCited, func(i, j int) bool {
		if cm.TopCited[i].Citations != cm.TopCited[j].Citations {
			return cm.TopCited[i].Citations > cm.TopCited[j].Citations
		}
		return cm.TopCited[i].Title < cm.TopCited[j].Title
	})

	return cm
}

// leadingYearToken returns the token before the first hyphen if it
// parses as a 4-digit year.
func leadingYearToken(published string) (string, bool) {
	token, _, _ := strings.Cut(strings.TrimSpace(published), "-")
	if len(token) != 4 {
		return "", false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return token, true
}
