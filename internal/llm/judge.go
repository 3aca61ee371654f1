// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// relevancePromptTmpl asks the model for a line-oriented verdict. The
// fixed RELEVANT/CONFIDENCE/REASON layout keeps parsing trivial and
// tolerant of surrounding chatter.
var relevancePromptTmpl = template.Must(template.New("relevance").Parse(`You are a research relevance checker. Decide whether the source below is relevant to the research query.

Research query: {{.Query}}

Source title: {{.Title}}
Source summary: {{.Summary}}

Respond with exactly three lines:
RELEVANT: YES or NO
CONFIDENCE: HIGH, MEDIUM, or LOW
REASON: one sentence explaining the decision
`))

// RelevanceJudge asks the language model whether a source is relevant to
// the query. It never fails: any transport or parse problem degrades to
// a permissive low-confidence judgment so the validation gate falls back
// to pure credibility scoring.
type RelevanceJudge struct {
	Client Client
}

// degradedJudgment is returned when the model cannot be consulted.
func degradedJudgment() types.RelevanceJudgment {
	return types.RelevanceJudgment{
		IsRelevant: true,
		Confidence: types.ConfidenceLow,
		Reason:     "relevance check unavailable",
	}
}

// Judge implements the validation gate's collaborator contract.
func (j RelevanceJudge) Judge(ctx context.Context, query string, src types.Source) types.RelevanceJudgment {
	var buf bytes.Buffer
	err := relevancePromptTmpl.Execute(&buf, struct {
		Query, Title, Summary string
	}{Query: query, Title: src.Title, Summary: truncate(src.Summary, 1000)})
	if err != nil {
		return degradedJudgment()
	}

	reply, err := j.Client.Complete(ctx, buf.String())
	if err != nil {
		return degradedJudgment()
	}
	return parseJudgment(reply)
}

// parseJudgment scans the reply for the three protocol lines. A reply
// missing the RELEVANT line degrades; missing CONFIDENCE or REASON lines
// fall back to LOW and an empty reason.
func parseJudgment(reply string) types.RelevanceJudgment {
	judgment := types.RelevanceJudgment{Confidence: types.ConfidenceLow}
	sawVerdict := false

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "RELEVANT:"):
			value := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "RELEVANT:")))
			judgment.IsRelevant = strings.HasPrefix(value, "YES")
			sawVerdict = true
		case strings.HasPrefix(line, "CONFIDENCE:"):
			value := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:")))
			switch {
			case strings.HasPrefix(value, "HIGH"):
				judgment.Confidence = types.ConfidenceHigh
			case strings.HasPrefix(value, "MEDIUM"):
				judgment.Confidence = types.ConfidenceMedium
			default:
				judgment.Confidence = types.ConfidenceLow
			}
		case strings.HasPrefix(line, "REASON:"):
			judgment.Reason = strings.TrimSpace(strings.TrimPrefix(line, "REASON:"))
		}
	}

	if !sawVerdict {
		return degradedJudgment()
	}
	return judgment
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
