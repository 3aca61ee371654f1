// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

type stubLLM struct {
	reply string
	err   error
	last  string
}

func (s *stubLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.last = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// --- citation map ---

func TestBuildCitationMapOrdering(t *testing.T) {
	sources := []types.Source{
		{Title: "B", CitationCount: 10, URL: "https://b", SourceType: types.SourceArxiv, Published: "2024-01-01"},
		{Title: "A", CitationCount: 10, URL: "https://a", SourceType: types.SourceArxiv, Published: "2024-05-01"},
		{Title: "C", CitationCount: 5, URL: "https://c", SourceType: types.SourceWeb, Published: "2023"},
	}

	cm := BuildCitationMap(sources)

	if cm.TotalSources != 3 {
		t.Fatalf("total = %d", cm.TotalSources)
	}
	wantTitles := []string{"A", "B", "C"}
	for i, want := range wantTitles {
		if cm.TopCited[i].Title != want {
			t.Fatalf("top_cited order = %+v, want titles %v", cm.TopCited, wantTitles)
		}
	}
	if cm.ByType["arxiv"] != 2 || cm.ByType["web"] != 1 {
		t.Fatalf("by_type = %v", cm.ByType)
	}
	if cm.ByYear["2024"] != 2 || cm.ByYear["2023"] != 1 {
		t.Fatalf("by_year = %v", cm.ByYear)
	}
}

func TestBuildCitationMapSkipsUnparsableYears(t *testing.T) {
	cm := BuildCitationMap([]types.Source{
		{Title: "T", Published: "unknown date"},
		{Title: "U", Published: ""},
	})
	if len(cm.ByYear) != 0 {
		t.Fatalf("by_year = %v, want empty", cm.ByYear)
	}
	if cm.ByType["unknown"] != 2 {
		t.Fatalf("by_type = %v", cm.ByType)
	}
}

func TestBuildCitationMapEmpty(t *testing.T) {
	cm := BuildCitationMap(nil)
	if cm.TotalSources != 0 || cm.TopCited == nil || len(cm.TopCited) != 0 {
		t.Fatalf("citation map = %+v", cm)
	}
}

// --- trends ---

func TestAnalyzeTrendsTopics(t *testing.T) {
	sources := []types.Source{
		{Title: "Transformers at scale", Summary: "attention everywhere"},
		{Title: "More transformers", Summary: ""},
		{Title: "Attention study", Summary: ""},
	}
	concepts := []string{"transformers", "attention", "pruning"}

	trends := AnalyzeTrends(sources, concepts)

	if len(trends.EmergingTopics) != 2 {
		t.Fatalf("topics = %+v", trends.EmergingTopics)
	}
	if trends.EmergingTopics[0].Topic != "transformers" || trends.EmergingTopics[0].Frequency != 2 {
		t.Fatalf("topics[0] = %+v", trends.EmergingTopics[0])
	}
	if trends.EmergingTopics[0].Trend != "rising" {
		t.Fatalf("trend label = %q", trends.EmergingTopics[0].Trend)
	}
}

func TestAnalyzeTrendsTieBreakByConceptOrder(t *testing.T) {
	sources := []types.Source{
		{Title: "alpha and beta together"},
	}
	trends := AnalyzeTrends(sources, []string{"beta", "alpha"})
	if trends.EmergingTopics[0].Topic != "beta" || trends.EmergingTopics[1].Topic != "alpha" {
		t.Fatalf("tie break broken: %+v", trends.EmergingTopics)
	}
}

func TestAnalyzeTrendsVelocityAndCitations(t *testing.T) {
	sources := []types.Source{
		{Published: "2024-01-01", CitationCount: 10},
		{Published: "2024-06-01", CitationCount: 20},
		{Published: "2023-01-01", CitationCount: 7},
		{Published: "no date"},
	}
	trends := AnalyzeTrends(sources, nil)

	if trends.PublicationVelocity["2024"] != 2 || trends.PublicationVelocity["2023"] != 1 {
		t.Fatalf("velocity = %v", trends.PublicationVelocity)
	}
	if trends.CitationTrends["2024"] != 15 || trends.CitationTrends["2023"] != 7 {
		t.Fatalf("citation trends = %v", trends.CitationTrends)
	}
	if _, ok := trends.CitationTrends["no date"]; ok {
		t.Fatal("unparsable year leaked into trends")
	}
}

func TestAnalyzeTrendsAuthorNetwork(t *testing.T) {
	sources := []types.Source{
		{Authors: []string{"Vaswani", "Shazeer", "Ignored Third"}},
		{Authors: []string{"Vaswani", "Jones"}},
	}
	trends := AnalyzeTrends(sources, nil)

	if len(trends.AuthorNetworks) != 3 {
		t.Fatalf("authors = %+v", trends.AuthorNetworks)
	}
	if trends.AuthorNetworks[0].Author != "Vaswani" || trends.AuthorNetworks[0].Papers != 2 {
		t.Fatalf("authors[0] = %+v", trends.AuthorNetworks[0])
	}
	for _, a := range trends.AuthorNetworks {
		if a.Author == "Ignored Third" {
			t.Fatal("third author should not count")
		}
	}
}

// --- alert triggers ---

func TestCreateAlertTriggers(t *testing.T) {
	var concepts []string
	for i := 0; i < 12; i++ {
		concepts = append(concepts, fmt.Sprintf("concept%d", i))
	}
	concepts[0] = "sparse attention"

	triggers := CreateAlertTriggers(concepts)

	if len(triggers) != maxEmergingTopics+2 {
		t.Fatalf("triggers = %d, want %d", len(triggers), maxEmergingTopics+2)
	}
	if triggers[0].Type != "keyword_match" || triggers[0].Priority != "high" {
		t.Fatalf("triggers[0] = %+v", triggers[0])
	}
	if triggers[1].Priority != "medium" {
		t.Fatalf("triggers[1] = %+v", triggers[1])
	}
	last := triggers[len(triggers)-1]
	if last.Type != "new_publication" || last.TimeframeDays != 7 {
		t.Fatalf("last trigger = %+v", last)
	}
	if triggers[len(triggers)-2].Type != "citation_threshold" || triggers[len(triggers)-2].Threshold != 50 {
		t.Fatalf("citation trigger = %+v", triggers[len(triggers)-2])
	}
}

// --- reporter ---

func sampleState() *types.PipelineState {
	state := types.NewPipelineState("transformer scaling", types.DepthStandard)
	state.ValidatedSources = []types.Source{
		{
			Title:      "Scaling Laws",
			Summary:    "Loss follows a power law.",
			Authors:    []string{"Kaplan", "McCandlish"},
			URL:        "https://arxiv.org/abs/2001.08361",
			SourceType: types.SourceArxiv,
		},
	}
	state.ConsensusFindings = []string{"scale predictably improves loss"}
	state.ResearchGaps = []types.ResearchGap{{Gap: "data-constrained scaling", Importance: "corpora are finite"}}
	state.KeyConcepts = []string{"scaling laws"}
	return state
}

func TestExecutiveSummary(t *testing.T) {
	client := &stubLLM{reply: "  Research shows scale wins.  "}
	rep := Reporter{Client: client}

	got := rep.ExecutiveSummary(context.Background(), sampleState())
	if got != "Research shows scale wins." {
		t.Fatalf("summary = %q", got)
	}
	if !strings.Contains(client.last, "transformer scaling") {
		t.Fatalf("prompt missing query:\n%s", client.last)
	}
}

func TestExecutiveSummaryFallback(t *testing.T) {
	rep := Reporter{Client: &stubLLM{err: fmt.Errorf("api down")}}
	if got := rep.ExecutiveSummary(context.Background(), sampleState()); got != summaryUnavailable {
		t.Fatalf("summary = %q", got)
	}
}

func TestDetailedReportAppendsSections(t *testing.T) {
	state := sampleState()
	state.Contradictions = []types.Contradiction{{Description: "Mixed conclusions: 2 positive vs 1 negative assessments."}}
	rep := Reporter{Client: &stubLLM{reply: "## Report body"}}

	got := rep.DetailedReport(context.Background(), state)

	if !strings.HasPrefix(got, "## Report body") {
		t.Fatalf("report = %q", got)
	}
	if !strings.Contains(got, "## CONFLICTING EVIDENCE") {
		t.Fatal("missing conflicting evidence section")
	}
	if !strings.Contains(got, "## SOURCES") {
		t.Fatal("missing citation appendix")
	}
	if !strings.Contains(got, "[1] Scaling Laws") || !strings.Contains(got, "Authors: Kaplan, McCandlish") {
		t.Fatalf("appendix malformed:\n%s", got)
	}
}

func TestDetailedReportFallback(t *testing.T) {
	rep := Reporter{Client: &stubLLM{err: fmt.Errorf("api down")}}
	if got := rep.DetailedReport(context.Background(), sampleState()); got != reportUnavailable {
		t.Fatalf("report = %q", got)
	}
}

// --- stages ---

func TestReportingStage(t *testing.T) {
	state := sampleState()
	stage := ReportingStage(Reporter{Client: &stubLLM{reply: "body"}}, io.Discard)

	update, err := stage.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	update.Apply(state)

	if state.ExecutiveSummary != "body" {
		t.Fatalf("executive summary = %q", state.ExecutiveSummary)
	}
	if state.CitationMap == nil || state.CitationMap.TotalSources != 1 {
		t.Fatalf("citation map = %+v", state.CitationMap)
	}
}

func TestMonitoringStage(t *testing.T) {
	state := sampleState()
	update, err := MonitoringStage(io.Discard).Run(context.Background(), state)
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	update.Apply(state)

	if !state.MonitoringEnabled {
		t.Fatal("monitoring not enabled")
	}
	// 1 concept trigger + citation_threshold + new_publication.
	if len(state.AlertTriggers) != 3 {
		t.Fatalf("triggers = %+v", state.AlertTriggers)
	}
	if state.TrendAnalysis == nil {
		t.Fatal("trend analysis missing")
	}
}

// --- file output ---

func TestReportFileNameStable(t *testing.T) {
	a := ReportFileName("transformer scaling")
	b := ReportFileName("transformer scaling")
	if a != b {
		t.Fatalf("file name unstable: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "report_") || !strings.HasSuffix(a, ".txt") {
		t.Fatalf("file name = %q", a)
	}
	if len(a) != len("report_")+8+len(".txt") {
		t.Fatalf("hash length wrong in %q", a)
	}
}

func TestWriteReportFile(t *testing.T) {
	state := sampleState()
	state.DetailedReport = "The report body."
	cfg := types.ReportConfig{ReportsDir: t.TempDir()}

	path, err := WriteReportFile(state, cfg)
	if err != nil {
		t.Fatalf("WriteReportFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "DETAILED RESEARCH REPORT") || !strings.Contains(content, "The report body.") {
		t.Fatalf("report content:\n%s", content)
	}
	if !strings.Contains(content, "Query: transformer scaling") {
		t.Fatalf("header missing query:\n%s", content)
	}
}

func TestWriteReportFileEmptyBody(t *testing.T) {
	state := sampleState()
	cfg := types.ReportConfig{ReportsDir: t.TempDir()}

	path, err := WriteReportFile(state, cfg)
	if err != nil {
		t.Fatalf("WriteReportFile failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "No detailed report generated.") {
		t.Fatalf("fallback body missing:\n%s", data)
	}
}

func TestFormatSummary(t *testing.T) {
	state := sampleState()
	state.SourceQualityAvg = 87.25

	got := FormatSummary(state)
	for _, want := range []string{
		"FINAL RESEARCH SUMMARY",
		"Query: transformer scaling",
		"Depth: standard",
		"Sources validated: 1",
		"Average quality score: 87.2",
		"Errors: 0",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}