// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/pdiddy/research-pipeline/internal/pipeline"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// RelevanceJudge decides whether a source is relevant to the query.
// Implementations never fail: a judge that cannot reach its backend
// returns a degraded permissive judgment instead of an error.
type RelevanceJudge interface {
	Judge(ctx context.Context, query string, src types.Source) types.RelevanceJudgment
}

// minThreshold is the floor of the dynamic acceptance threshold. A
// uniformly weak corpus still rejects scores below this.
const minThreshold = 40

// Threshold computes the dynamic acceptance threshold for a set of
// preliminary scores: mean minus 15, rounded, floored at minThreshold.
func Threshold(scores []types.ScoreRecord) int {
	if len(scores) == 0 {
		return minThreshold
	}
	sum := 0
	for _, rec := range scores {
		sum += rec.Score
	}
	mean := float64(sum) / float64(len(scores))
	thr := int(math.Round(mean - 15))
	if thr < minThreshold {
		thr = minThreshold
	}
	return thr
}

// Result is the outcome of one validation run.
type Result struct {
	// Accepted holds the sources that passed the gate, in input order.
	Accepted []types.Source

	// Scores holds the score record of every input source, accepted or
	// not, in input order.
	Scores []types.ScoreRecord

	// Threshold is the dynamic threshold the run used.
	Threshold int

	// Summary aggregates the accepted records.
	Summary types.CredibilitySummary
}

// Gate scores sources and filters them against the dynamic threshold
// combined with the relevance judgment.
type Gate struct {
	Judge RelevanceJudge
	Table ScoringTable
}

// Validate runs the two-pass gate. The first pass scores every source so
// the threshold reflects the whole corpus; the second pass judges
// relevance and applies the acceptance rule. A source is accepted when it
// is relevant and either the judge is highly confident, or the score
// meets the threshold, or the judge is moderately confident and the
// score is within 5 points above the threshold.
func (g Gate) Validate(ctx context.Context, query string, sources []types.Source, w io.Writer) Result {
	scores := make([]types.ScoreRecord, len(sources))
	for i, src := range sources {
		scores[i] = ScoreSource(src, g.Table)
	}

	thr := Threshold(scores)
	fmt.Fprintf(w, "acceptance threshold: %d\n", thr)

	accepted := []types.Source{}
	for i, src := range sources {
		judgment := g.Judge.Judge(ctx, query, src)
		scores[i].Relevance = judgment

		if accepts(judgment, scores[i].Score, thr) {
			accepted = append(accepted, src)
		} else {
			fmt.Fprintf(w, "rejected %s (score %d): %s\n", src.ID, scores[i].Score, judgment.Reason)
		}
	}

	return Result{
		Accepted:  accepted,
		Scores:    scores,
		Threshold: thr,
		Summary:   summarize(accepted, scores),
	}
}

func accepts(j types.RelevanceJudgment, score, thr int) bool {
	if !j.IsRelevant {
		return false
	}
	if j.Confidence == types.ConfidenceHigh {
		return true
	}
	if score >= thr {
		return true
	}
	return j.Confidence == types.ConfidenceMedium && score >= thr+5
}

// summarize aggregates the records of the accepted sources.
func summarize(accepted []types.Source, scores []types.ScoreRecord) types.CredibilitySummary {
	byID := make(map[string]types.ScoreRecord, len(scores))
	for _, rec := range scores {
		byID[rec.SourceID] = rec
	}

	summary := types.CredibilitySummary{TotalValidated: len(accepted)}
	if len(accepted) == 0 {
		return summary
	}

	sum := 0
	for _, src := range accepted {
		rec := byID[src.ID]
		sum += rec.Score
		switch {
		case rec.Score >= 85:
			summary.Distribution.Excellent++
		case rec.Score >= 70:
			summary.Distribution.Good++
		case rec.Score >= 55:
			summary.Distribution.Fair++
		}
	}
	mean := float64(sum) / float64(len(accepted))
	summary.AverageScore = math.Round(mean*100) / 100
	return summary
}

// Stage wraps the gate as a pipeline stage.
func Stage(judge RelevanceJudge, table ScoringTable, w io.Writer) pipeline.Stage {
	return pipeline.Stage{
		Name: "validation",
		Run: func(ctx context.Context, state *types.PipelineState) (types.StateUpdate, error) {
			gate := Gate{Judge: judge, Table: table}
			res := gate.Validate(ctx, state.Query, state.RawSources, w)
			fmt.Fprintf(w, "validated %d/%d sources (avg %.2f)\n",
				len(res.Accepted), len(state.RawSources), res.Summary.AverageScore)

			avg := res.Summary.AverageScore
			return types.StateUpdate{
				ValidatedSources:  res.Accepted,
				ValidationScores:  res.Scores,
				CredibilityReport: &res.Summary,
				SourceQualityAvg:  &avg,
			}, nil
		},
	}
}
