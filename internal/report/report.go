// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/research-pipeline/internal/llm"
	"github.com/pdiddy/research-pipeline/internal/pipeline"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// summaryUnavailable is the executive summary fallback when the model
// cannot be reached.
const summaryUnavailable = "Executive summary unavailable."

// reportUnavailable is the detailed report fallback.
const reportUnavailable = "Detailed report generation failed."

var execSummaryTmpl = template.Must(template.New("exec").Parse(`Create a 3-4 sentence executive summary for the following research findings.
Query: {{.Query}}
Key Findings: {{.Findings}}
Research Gaps: {{.Gaps}}
Be concise and actionable.
`))

var detailedReportTmpl = template.Must(template.New("detailed").Parse(`Generate a structured research report.
Query: {{.Query}}

SOURCES:
{{.Sources}}

CONSENSUS FINDINGS:
{{.Findings}}

RESEARCH GAPS:
{{.Gaps}}

KEY CONCEPTS: {{.Concepts}}

Sections:
1. Executive Summary
2. Key Findings
3. Notable Insights
4. Research Gaps & Future Directions
5. Conflicting Evidence
6. Conclusion
`))

// Reporter generates the narrative artifacts via the language model.
// Model failure degrades to fixed fallback strings; reporting never
// fails the pipeline.
type Reporter struct {
	Client llm.Client
}

// ExecutiveSummary produces a short summary from the top findings and
// gaps.
func (r Reporter) ExecutiveSummary(ctx context.Context, state *types.PipelineState) string {
	findings := state.ConsensusFindings
	if len(findings) > 5 {
		findings = findings[:5]
	}
	var gaps []string
	for _, g := range state.ResearchGaps {
		gaps = append(gaps, g.Gap)
		if len(gaps) == 3 {
			break
		}
	}

	var buf bytes.Buffer
	err := execSummaryTmpl.Execute(&buf, map[string]string{
		"Query":    state.Query,
		"Findings": strings.Join(findings, ", "),
		"Gaps":     strings.Join(gaps, ", "),
	})
	if err != nil {
		return summaryUnavailable
	}

	reply, err := r.Client.Complete(ctx, buf.String())
	if err != nil {
		return summaryUnavailable
	}
	return strings.TrimSpace(reply)
}

// DetailedReport produces the full report body and appends the
// conflicting-evidence section and the citation appendix. The appendix
// is built locally so it survives even a degraded model reply.
func (r Reporter) DetailedReport(ctx context.Context, state *types.PipelineState) string {
	sources := state.ValidatedSources
	if len(sources) > 10 {
		sources = sources[:10]
	}

	var sourceLines []string
	for i, src := range sources {
		summary := src.Summary
		if len(summary) > 200 {
			summary = summary[:200]
		}
		sourceLines = append(sourceLines, fmt.Sprintf("[%d] %s - %s", i+1, src.Title, summary))
	}
	var findingLines, gapLines []string
	for _, f := range state.ConsensusFindings {
		findingLines = append(findingLines, "- "+f)
	}
	for _, g := range state.ResearchGaps {
		gapLines = append(gapLines, "- "+g.Gap)
	}
	concepts := state.KeyConcepts
	if len(concepts) > 10 {
		concepts = concepts[:10]
	}

	var buf bytes.Buffer
	err := detailedReportTmpl.Execute(&buf, map[string]string{
		"Query":    state.Query,
		"Sources":  strings.Join(sourceLines, "\n"),
		"Findings": strings.Join(findingLines, "\n"),
		"Gaps":     strings.Join(gapLines, "\n"),
		"Concepts": strings.Join(concepts, ", "),
	})
	if err != nil {
		return reportUnavailable
	}

	body, err := r.Client.Complete(ctx, buf.String())
	if err != nil {
		return reportUnavailable
	}

	var out strings.Builder
	out.WriteString(body)

	if len(state.Contradictions) > 0 {
		out.WriteString("\n\n## CONFLICTING EVIDENCE\n")
		for _, c := range state.Contradictions {
			out.WriteString("- " + c.Description + "\n")
		}
	}

	out.WriteString(citationAppendix(sources))
	return out.String()
}

// citationAppendix renders the numbered source list appended to every
// detailed report.
func citationAppendix(sources []types.Source) string {
	var b strings.Builder
	b.WriteString("\n\n## SOURCES\n\n")
	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = "Unknown"
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, title)
		if len(src.Authors) > 0 {
			authors := src.Authors
			if len(authors) > 3 {
				authors = authors[:3]
			}
			fmt.Fprintf(&b, "    Authors: %s\n", strings.Join(authors, ", "))
		}
		url := src.URL
		if url == "" {
			url = "N/A"
		}
		kind := string(src.SourceType)
		if kind == "" {
			kind = "Unknown"
		}
		fmt.Fprintf(&b, "    URL: %s\n", url)
		fmt.Fprintf(&b, "    Source: %s\n\n", kind)
	}
	return b.String()
}

// ReportingStage wraps report generation as a pipeline stage.
func ReportingStage(rep Reporter, w io.Writer) pipeline.Stage {
	return pipeline.Stage{
		Name: "reporting",
		Run: func(ctx context.Context, state *types.PipelineState) (types.StateUpdate, error) {
			exec := rep.ExecutiveSummary(ctx, state)
			detailed := rep.DetailedReport(ctx, state)
			cm := BuildCitationMap(state.ValidatedSources)

			fmt.Fprintf(w, "reporting: %d chars, %d cited sources\n", len(detailed), cm.TotalSources)
			return types.StateUpdate{
				ExecutiveSummary: &exec,
				DetailedReport:   &detailed,
				CitationMap:      &cm,
			}, nil
		},
	}
}

// MonitoringStage wraps trigger and trend setup as a pipeline stage.
func MonitoringStage(w io.Writer) pipeline.Stage {
	return pipeline.Stage{
		Name: "monitoring",
		Run: func(ctx context.Context, state *types.PipelineState) (types.StateUpdate, error) {
			triggers := CreateAlertTriggers(state.KeyConcepts)
			trends := AnalyzeTrends(state.ValidatedSources, state.KeyConcepts)
			enabled := true

			fmt.Fprintf(w, "monitoring: %d triggers, %d emerging topics\n",
				len(triggers), len(trends.EmergingTopics))
			return types.StateUpdate{
				MonitoringEnabled: &enabled,
				AlertTriggers:     triggers,
				TrendAnalysis:     &trends,
			}, nil
		},
	}
}

// ReportFileName derives the stable report file name for a query: the
// first 8 hex characters of SHA-256(query).
func ReportFileName(query string) string {
	h := sha256.Sum256([]byte(query))
	return fmt.Sprintf("report_%x.txt", h[:4])
}

// WriteReportFile persists the detailed report under cfg.ReportsDir,
// creating the directory if needed, and returns the path.
func WriteReportFile(state *types.PipelineState, cfg types.ReportConfig) (string, error) {
	if err := os.MkdirAll(cfg.ReportsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	body := state.DetailedReport
	if body == "" {
		body = "No detailed report generated."
	}

	divider := strings.Repeat("=", 80)
	header := fmt.Sprintf("%s\nDETAILED RESEARCH REPORT\n%s\nQuery: %s\nGenerated: %s\n\n",
		divider, divider, state.Query, time.Now().Format("2006-01-02 15:04:05"))

	path := filepath.Join(cfg.ReportsDir, ReportFileName(state.Query))
	if err := os.WriteFile(path, []byte(header+body), 0o644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}

// FormatSummary renders the terminal summary block for a finished run.
func FormatSummary(state *types.PipelineState) string {
	divider := strings.Repeat("=", 80)
	lines := []string{
		divider,
		"FINAL RESEARCH SUMMARY",
		divider,
		fmt.Sprintf("Query: %s", state.Query),
		fmt.Sprintf("Depth: %s", state.Depth),
		fmt.Sprintf("Sources discovered: %d", len(state.RawSources)),
		fmt.Sprintf("Sources validated: %d", len(state.ValidatedSources)),
		fmt.Sprintf("Average quality score: %.1f", state.SourceQualityAvg),
		fmt.Sprintf("Key concepts: %d", len(state.KeyConcepts)),
		fmt.Sprintf("Consensus findings: %d", len(state.ConsensusFindings)),
		fmt.Sprintf("Research gaps: %d", len(state.ResearchGaps)),
		fmt.Sprintf("Contradictions: %d", len(state.Contradictions)),
		fmt.Sprintf("Monitoring triggers: %d", len(state.AlertTriggers)),
		fmt.Sprintf("Errors: %d", len(state.Errors)),
		divider,
	}
	return strings.Join(lines, "\n")
}
