// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// --- mock model ---

type stubLLM struct {
	reply string
	err   error
}

func (s stubLLM) Complete(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func standardExtractor(reply string) Extractor {
	return Extractor{
		Client: stubLLM{reply: reply},
		Depth:  types.DepthPreset(types.DepthStandard),
	}
}

// --- concept extraction ---

func TestParseConcepts(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "plain list",
			reply: "transformers, attention, fine-tuning",
			want:  []string{"transformers", "attention", "fine-tuning"},
		},
		{
			name:  "intro phrase stripped",
			reply: "Here are the key concepts: transformers, attention",
			want:  []string{"transformers", "attention"},
		},
		{
			name:  "bullet prefixes removed",
			reply: "- transformers, * attention, • pruning",
			want:  []string{"transformers", "attention", "pruning"},
		},
		{
			name:  "blank entries dropped",
			reply: "transformers,, ,attention",
			want:  []string{"transformers", "attention"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseConcepts(tt.reply)
			if len(got) != len(tt.want) {
				t.Fatalf("parseConcepts = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("concepts[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractConceptsCapsAtDepth(t *testing.T) {
	var parts []string
	for i := 0; i < 30; i++ {
		parts = append(parts, fmt.Sprintf("concept %d", i))
	}
	ext := standardExtractor(strings.Join(parts, ", "))

	got := ext.ExtractConcepts(context.Background(), []types.Source{{Title: "T"}}, "q")
	if len(got) != ext.Depth.MaxConcepts {
		t.Fatalf("got %d concepts, want %d", len(got), ext.Depth.MaxConcepts)
	}
}

func TestExtractConceptsAbsorbsFailure(t *testing.T) {
	ext := Extractor{
		Client: stubLLM{err: fmt.Errorf("api down")},
		Depth:  types.DepthPreset(types.DepthQuick),
	}
	if got := ext.ExtractConcepts(context.Background(), []types.Source{{Title: "T"}}, "q"); got != nil {
		t.Fatalf("concepts = %v, want nil", got)
	}
}

// --- consensus ---

func TestFindConsensusParsesDashLines(t *testing.T) {
	ext := standardExtractor("Findings:\n- attention improves quality\nnot a finding\n- scale matters\n")
	got := ext.FindConsensus(context.Background(), []types.Source{{Title: "T"}}, "q")
	want := []string{"attention improves quality", "scale matters"}
	if len(got) != len(want) {
		t.Fatalf("findings = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("findings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// --- gaps ---

func TestIdentifyGapsParsesFormat(t *testing.T) {
	reply := "GAP: long-context evaluation\nWHY: benchmarks stop at 128k\n---\nGAP: energy cost\nWHY: training budgets are opaque"
	ext := standardExtractor(reply)

	gaps := ext.IdentifyGaps(context.Background(), []string{"transformers"})
	if len(gaps) != 2 {
		t.Fatalf("gaps = %v", gaps)
	}
	if gaps[0].Gap != "long-context evaluation" || gaps[0].Importance != "benchmarks stop at 128k" {
		t.Fatalf("gaps[0] = %+v", gaps[0])
	}
	if gaps[1].Gap != "energy cost" || gaps[1].Importance != "training budgets are opaque" {
		t.Fatalf("gaps[1] = %+v", gaps[1])
	}
}

func TestIdentifyGapsHandlesMissingWhy(t *testing.T) {
	ext := standardExtractor("GAP: first\nGAP: second\nWHY: reason")
	gaps := ext.IdentifyGaps(context.Background(), []string{"c"})
	if len(gaps) != 2 {
		t.Fatalf("gaps = %v", gaps)
	}
	if gaps[0].Gap != "first" || gaps[0].Importance != "" {
		t.Fatalf("gaps[0] = %+v", gaps[0])
	}
}

// --- contradictions ---

func TestDetectContradictions(t *testing.T) {
	sources := []types.Source{
		{Title: "Attention improves translation", Summary: "Quality is effective at scale."},
		{Title: "Pruning is effective", Summary: "Sparse layers improve speed."},
		{Title: "Scaling fails past a threshold", Summary: "Larger depth adds little gain."},
	}
	got := DetectContradictions(sources)
	if len(got) != 1 {
		t.Fatalf("contradictions = %v", got)
	}
	c := got[0]
	if c.Type != "effectiveness_debate" || c.Severity != "medium" {
		t.Fatalf("contradiction = %+v", c)
	}
	if c.Description != "Mixed conclusions: 2 positive vs 1 negative assessments." {
		t.Fatalf("description = %q", c.Description)
	}
	if len(c.SourcesPositive) != 2 || len(c.SourcesNegative) != 1 {
		t.Fatalf("evidence = %+v", c)
	}
	if c.SourcesNegative[0] != "Scaling fails past a threshold" {
		t.Fatalf("negative evidence = %v", c.SourcesNegative)
	}
}

func TestDetectContradictionsOneSidedIsEmpty(t *testing.T) {
	sources := []types.Source{
		{Title: "Attention improves translation"},
		{Title: "Pruning is effective"},
	}
	got := DetectContradictions(sources)
	if got == nil || len(got) != 0 {
		t.Fatalf("contradictions = %#v, want empty non-nil", got)
	}
}

func TestDetectContradictionsCapsEvidence(t *testing.T) {
	var sources []types.Source
	for i := 0; i < 5; i++ {
		sources = append(sources, types.Source{Title: fmt.Sprintf("Study %d improves results", i)})
	}
	sources = append(sources, types.Source{Title: "Replication fails"})

	got := DetectContradictions(sources)
	if len(got) != 1 || len(got[0].SourcesPositive) != 3 {
		t.Fatalf("contradictions = %+v", got)
	}
	if !strings.Contains(got[0].Description, "5 positive vs 1 negative") {
		t.Fatalf("description = %q", got[0].Description)
	}
}

// --- knowledge graph ---

func graphSource(id, title, summary string) types.Source {
	return types.Source{ID: id, Title: title, Summary: summary, URL: "https://example.com/" + id}
}

func TestBuildGraphEdgesReferenceNodes(t *testing.T) {
	sources := []types.Source{
		graphSource("s1", "Neural Networks in practice", "Transformers dominate."),
		graphSource("s2", "Neural Networks and Transformers", "A survey."),
		graphSource("s3", "Unrelated archaeology", "Bronze age pottery."),
	}
	concepts := []string{"Neural Networks", "Transformers"}

	g := BuildGraph(sources, concepts, 15)

	ids := map[string]bool{}
	for _, n := range g.Nodes {
		if ids[n.ID] {
			t.Fatalf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			t.Fatalf("edge %+v references missing node", e)
		}
	}
	if g.Metadata.TotalNodes != len(g.Nodes) || g.Metadata.TotalEdges != len(g.Edges) {
		t.Fatalf("metadata %+v does not match %d nodes / %d edges", g.Metadata, len(g.Nodes), len(g.Edges))
	}
}

func TestBuildGraphRelatedToNeedsTwoSupporters(t *testing.T) {
	sources := []types.Source{
		graphSource("s1", "Neural Networks meet Transformers", ""),
		graphSource("s2", "", "Both neural networks and transformers appear here."),
		graphSource("s3", "Only neural networks here", ""),
	}
	g := BuildGraph(sources, []string{"Neural Networks", "Transformers"}, 15)

	related := 0
	for _, e := range g.Edges {
		if e.Relation == types.RelationRelated {
			related++
			if e.Source != "neural_networks" || e.Target != "transformers" {
				t.Fatalf("related edge = %+v", e)
			}
		}
	}
	if related != 1 {
		t.Fatalf("related_to edges = %d, want 1", related)
	}
}

func TestBuildGraphRelatedToSingleSupporterOmitted(t *testing.T) {
	sources := []types.Source{
		graphSource("s1", "Neural Networks meet Transformers", ""),
		graphSource("s2", "Only transformers here", ""),
	}
	g := BuildGraph(sources, []string{"Neural Networks", "Transformers"}, 15)
	for _, e := range g.Edges {
		if e.Relation == types.RelationRelated {
			t.Fatalf("unexpected related_to edge %+v", e)
		}
	}
}

func TestBuildGraphMentionsFallback(t *testing.T) {
	sources := []types.Source{
		graphSource("s1", "Bronze age pottery", "Archaeology of clay."),
	}
	g := BuildGraph(sources, []string{"Transformers"}, 15)

	if len(g.Edges) != 1 {
		t.Fatalf("edges = %+v", g.Edges)
	}
	e := g.Edges[0]
	if e.Relation != types.RelationMentions || e.Source != "s1" || e.Target != "transformers" {
		t.Fatalf("edge = %+v", e)
	}
}

func TestBuildGraphConceptNormalization(t *testing.T) {
	g := BuildGraph(nil, []string{"Multi-Head Attention", "ab", "  "}, 15)
	if len(g.Nodes) != 1 {
		t.Fatalf("nodes = %+v", g.Nodes)
	}
	if g.Nodes[0].ID != "multi_head_attention" || g.Nodes[0].Label != "Multi-Head Attention" {
		t.Fatalf("node = %+v", g.Nodes[0])
	}
}

func TestBuildGraphConceptCollisionLastWins(t *testing.T) {
	g := BuildGraph(nil, []string{"neural networks", "Neural Networks"}, 15)
	if len(g.Nodes) != 1 {
		t.Fatalf("nodes = %+v", g.Nodes)
	}
	if g.Nodes[0].Label != "Neural Networks" {
		t.Fatalf("label = %q, want last-wins", g.Nodes[0].Label)
	}
}

func TestBuildGraphCapsSourcesAndLabels(t *testing.T) {
	var sources []types.Source
	longTitle := strings.Repeat("t", 100)
	for i := 0; i < 14; i++ {
		sources = append(sources, graphSource(fmt.Sprintf("s%d", i), longTitle, ""))
	}
	g := BuildGraph(sources, nil, 15)

	if len(g.Nodes) != maxGraphSources {
		t.Fatalf("nodes = %d, want %d", len(g.Nodes), maxGraphSources)
	}
	for _, n := range g.Nodes {
		if len(n.Label) > maxSourceLabel {
			t.Fatalf("label %q exceeds %d chars", n.Label, maxSourceLabel)
		}
	}
}

// --- stage ---

func TestStageEmptyValidatedSet(t *testing.T) {
	state := types.NewPipelineState("q", types.DepthQuick)
	stage := Stage(standardExtractor(""), io.Discard)

	update, err := stage.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	update.Apply(state)

	if state.KeyConcepts == nil || len(state.KeyConcepts) != 0 {
		t.Fatalf("concepts = %#v", state.KeyConcepts)
	}
	if state.KnowledgeGraph == nil || state.KnowledgeGraph.Metadata.TotalNodes != 0 {
		t.Fatalf("graph = %+v", state.KnowledgeGraph)
	}
	if state.Contradictions == nil || state.ResearchGaps == nil {
		t.Fatal("synthesis outputs should be well-typed empties")
	}
}

func TestStagePopulatesState(t *testing.T) {
	state := types.NewPipelineState("transformers", types.DepthQuick)
	state.ValidatedSources = []types.Source{
		graphSource("s1", "Transformers survey", "Attention mechanisms improve translation."),
	}
	ext := Extractor{
		Client: stubLLM{reply: "transformers, attention"},
		Depth:  types.DepthPreset(types.DepthQuick),
	}

	update, err := Stage(ext, io.Discard).Run(context.Background(), state)
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	update.Apply(state)

	if len(state.KeyConcepts) != 2 {
		t.Fatalf("concepts = %v", state.KeyConcepts)
	}
	if state.KnowledgeGraph == nil || state.KnowledgeGraph.Metadata.TotalNodes == 0 {
		t.Fatalf("graph = %+v", state.KnowledgeGraph)
	}
}
