// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-pipeline/internal/discover"
	"github.com/pdiddy/research-pipeline/internal/pipeline"
	"github.com/pdiddy/research-pipeline/internal/report"
	"github.com/pdiddy/research-pipeline/internal/synthesize"
	"github.com/pdiddy/research-pipeline/internal/validate"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// fixedBackend returns a canned result set for any query.
type fixedBackend struct {
	name    string
	sources []types.Source
}

func (b fixedBackend) Name() string { return b.name }

func (b fixedBackend) Search(_ context.Context, _ string, limit int, _ types.SearchConfig) ([]types.Source, error) {
	if limit < len(b.sources) {
		return b.sources[:limit], nil
	}
	return b.sources, nil
}

// scriptedLLM answers every prompt with the same reply.
type scriptedLLM struct {
	reply string
}

func (c scriptedLLM) Complete(_ context.Context, _ string) (string, error) {
	if c.reply == "" {
		return "", fmt.Errorf("model unavailable")
	}
	return c.reply, nil
}

// permissiveJudge accepts everything with high confidence.
type permissiveJudge struct{}

func (permissiveJudge) Judge(_ context.Context, _ string, _ types.Source) types.RelevanceJudgment {
	return types.RelevanceJudgment{IsRelevant: true, Confidence: types.ConfidenceHigh, Reason: "on topic"}
}

func fullStages(backends []discover.Backend, llm scriptedLLM, w *bytes.Buffer) []pipeline.Stage {
	depth := types.DepthPreset(types.DepthStandard)
	return []pipeline.Stage{
		discover.Stage(backends, nil, depth, types.SearchConfig{}, w),
		validate.Stage(permissiveJudge{}, validate.DefaultScoringTable(), w),
		synthesize.Stage(synthesize.Extractor{Client: llm, Depth: depth}, w),
		report.ReportingStage(report.Reporter{Client: llm}, w),
		report.MonitoringStage(w),
	}
}

func TestFullRunCompletes(t *testing.T) {
	sources := []types.Source{
		{
			ID:            "arxiv_1",
			Title:         "Transformer Scaling Laws",
			Authors:       []string{"Ada One", "Ben Two", "Cleo Three"},
			Summary:       "A long systematic study of scaling behavior across model sizes, covering training compute, dataset size, and downstream quality. The findings hold across several orders of magnitude and multiple architectures, with detailed ablations and careful statistical treatment of the results.",
			URL:           "https://arxiv.org/abs/2301.00001",
			Published:     "2026-01-15",
			SourceType:    types.SourceArxiv,
			CitationCount: 120,
		},
		{
			ID:            "ss_2",
			Title:         "Efficient Attention Mechanisms",
			Authors:       []string{"Dee Four"},
			Summary:       "Surveys linear and sparse attention variants and compares their quality and throughput tradeoffs on standard benchmarks, with recommendations for practitioners choosing among them for long-context workloads.",
			URL:           "https://example.org/paper2",
			Published:     "2025-06-01",
			SourceType:    types.SourceSemanticScholar,
			CitationCount: 45,
		},
	}
	backends := []discover.Backend{fixedBackend{name: "arxiv", sources: sources}}
	llm := scriptedLLM{reply: "scaling laws, attention, efficiency"}

	var buf bytes.Buffer
	state := types.NewPipelineState("transformer scaling", types.DepthStandard)
	err := pipeline.NewRunner(fullStages(backends, llm, &buf), &buf).Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, types.StatusCompleted, state.Status)
	assert.Equal(t, types.StageComplete, state.CurrentStage)
	assert.Len(t, state.RawSources, 2)
	assert.Len(t, state.ValidatedSources, 2)
	require.NotNil(t, state.CredibilityReport)
	assert.NotEmpty(t, state.KeyConcepts)
	require.NotNil(t, state.KnowledgeGraph)
	assert.NotEmpty(t, state.KnowledgeGraph.Nodes)
	assert.NotEmpty(t, state.ExecutiveSummary)
	require.NotNil(t, state.CitationMap)
	assert.True(t, state.MonitoringEnabled)
	assert.NotEmpty(t, state.AlertTriggers)
	assert.False(t, state.CompletedAt.IsZero())
	assert.Empty(t, state.Errors)
}

func TestFullRunEmptyDiscoveryCompletes(t *testing.T) {
	backends := []discover.Backend{fixedBackend{name: "arxiv"}}
	llm := scriptedLLM{} // model unavailable for every call

	var buf bytes.Buffer
	state := types.NewPipelineState("an obscure question", types.DepthStandard)
	err := pipeline.NewRunner(fullStages(backends, llm, &buf), &buf).Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, types.StatusCompleted, state.Status)
	assert.Empty(t, state.RawSources)
	assert.Empty(t, state.ValidatedSources)
	assert.Zero(t, state.SourceQualityAvg)
	require.NotNil(t, state.KnowledgeGraph)
	assert.Empty(t, state.KnowledgeGraph.Nodes)
	assert.Equal(t, "Executive summary unavailable.", state.ExecutiveSummary)
	assert.True(t, state.MonitoringEnabled)
}
