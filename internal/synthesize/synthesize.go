// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesize derives concepts, consensus findings, research
// gaps, contradictions, and the knowledge graph from validated sources.
package synthesize

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/research-pipeline/internal/llm"
	"github.com/pdiddy/research-pipeline/internal/pipeline"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// conceptPromptTmpl asks for a bare comma-separated concept list. Models
// still prepend chatter sometimes; parseConcepts strips it.
var conceptPromptTmpl = template.Must(template.New("concepts").Parse(`Extract {{.Max}} key technical concepts related to '{{.Query}}' from the following research snippets.
IMPORTANT: only extract concepts that are directly relevant to the research topic.

{{.Snippets}}

Return ONLY a comma-separated list of concepts, without any introductory text or explanation.
`))

var consensusPromptTmpl = template.Must(template.New("consensus").Parse(`Identify consensus findings SPECIFICALLY about '{{.Query}}' from the following summaries.
IMPORTANT: only include findings that are directly related to '{{.Query}}'. Exclude information about unrelated topics.

Summaries:
{{.Summaries}}

List {{.Max}} findings prefixed with '-'. Each finding must be directly relevant to '{{.Query}}'.
`))

var gapsPromptTmpl = template.Must(template.New("gaps").Parse(`Given the following key concepts, identify {{.Max}} research gaps.
Concepts: {{.Concepts}}
Format each gap as:
GAP: <name>
WHY: <importance>
---
`))

// introPhrases are chatter prefixes models prepend despite instructions.
var introPhrases = []string{
	"here are",
	"the key concepts are",
	"key concepts:",
	"concepts:",
}

// Extractor runs the language-model synthesis calls. Every method
// absorbs model failure into an empty result; synthesis never fails the
// pipeline.
type Extractor struct {
	Client llm.Client
	Depth  types.DepthConfig
}

// ExtractConcepts asks the model for key concepts across the first 10
// sources and returns them capped at the depth preset's maximum.
func (e Extractor) ExtractConcepts(ctx context.Context, sources []types.Source, query string) []string {
	maxSources := min(10, len(sources))
	var snippets []string
	for _, src := range sources[:maxSources] {
		snippets = append(snippets, src.Title+" "+clip(src.Summary, 200))
	}

	reply, err := render(ctx, e.Client, conceptPromptTmpl, map[string]any{
		"Max":      e.Depth.MaxConcepts,
		"Query":    query,
		"Snippets": strings.Join(snippets, "\n"),
	})
	if err != nil {
		return nil
	}

	concepts := parseConcepts(reply)
	if len(concepts) > e.Depth.MaxConcepts {
		concepts = concepts[:e.Depth.MaxConcepts]
	}
	return concepts
}

// parseConcepts strips intro chatter and splits a comma-separated list.
func parseConcepts(reply string) []string {
	content := strings.TrimSpace(reply)
	lower := strings.ToLower(content)
	for _, phrase := range introPhrases {
		if strings.HasPrefix(lower, phrase) {
			if idx := strings.Index(content, ":"); idx >= 0 {
				content = strings.TrimSpace(content[idx+1:])
			}
			break
		}
	}

	var concepts []string
	for _, part := range strings.Split(content, ",") {
		concept := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "-•* "))
		if concept == "" {
			continue
		}
		if containsAnyFold(concept, introPhrases) {
			continue
		}
		concepts = append(concepts, concept)
	}
	return concepts
}

// FindConsensus asks the model for consensus findings, parsed from the
// dash-prefixed lines of the reply.
func (e Extractor) FindConsensus(ctx context.Context, sources []types.Source, query string) []string {
	maxSources := min(8, len(sources))
	var parts []string
	for i, src := range sources[:maxSources] {
		parts = append(parts, fmt.Sprintf("Source %d: %s\n%s", i+1, src.Title, clip(src.Summary, 300)))
	}

	reply, err := render(ctx, e.Client, consensusPromptTmpl, map[string]any{
		"Max":       e.Depth.MaxConsensusFindings,
		"Query":     query,
		"Summaries": strings.Join(parts, "\n\n"),
	})
	if err != nil {
		return nil
	}

	var findings []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") {
			findings = append(findings, strings.TrimSpace(strings.TrimLeft(line, "- ")))
		}
	}
	return findings
}

// IdentifyGaps asks the model for research gap hypotheses in the
// GAP/WHY line format.
func (e Extractor) IdentifyGaps(ctx context.Context, concepts []string) []types.ResearchGap {
	listed := concepts
	if len(listed) > 10 {
		listed = listed[:10]
	}

	reply, err := render(ctx, e.Client, gapsPromptTmpl, map[string]any{
		"Max":      e.Depth.MaxResearchGaps,
		"Concepts": strings.Join(listed, ", "),
	})
	if err != nil {
		return nil
	}

	var gaps []types.ResearchGap
	var current types.ResearchGap
	flush := func() {
		if current.Gap != "" {
			gaps = append(gaps, current)
			current = types.ResearchGap{}
		}
	}
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "GAP:"):
			flush()
			current.Gap = strings.TrimSpace(strings.TrimPrefix(line, "GAP:"))
		case strings.HasPrefix(line, "WHY:"):
			current.Importance = strings.TrimSpace(strings.TrimPrefix(line, "WHY:"))
		case line == "---":
			flush()
		}
	}
	flush()
	return gaps
}

func render(ctx context.Context, client llm.Client, tmpl *template.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return client.Complete(ctx, buf.String())
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func containsAnyFold(s string, phrases []string) bool {
	lower := strings.ToLower(s)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Stage wraps the full synthesis flow as a pipeline stage. With no
// validated sources every output is a well-typed empty value rather
// than an error.
func Stage(ext Extractor, w io.Writer) pipeline.Stage {
	return pipeline.Stage{
		Name: "synthesis",
		Run: func(ctx context.Context, state *types.PipelineState) (types.StateUpdate, error) {
			if len(state.ValidatedSources) == 0 {
				fmt.Fprintln(w, "warning: no validated sources to synthesize")
				return types.StateUpdate{
					KeyConcepts:       []string{},
					ConsensusFindings: []string{},
					Contradictions:    []types.Contradiction{},
					ResearchGaps:      []types.ResearchGap{},
					KnowledgeGraph:    &types.KnowledgeGraph{Nodes: []types.GraphNode{}, Edges: []types.GraphEdge{}},
				}, nil
			}

			sources := state.ValidatedSources
			concepts := ext.ExtractConcepts(ctx, sources, state.Query)
			consensus := ext.FindConsensus(ctx, sources, state.Query)
			contradictions := DetectContradictions(sources)
			gaps := ext.IdentifyGaps(ctx, concepts)
			graph := BuildGraph(sources, concepts, ext.Depth.MaxConcepts)

			fmt.Fprintf(w, "synthesis: %d concepts, %d findings, %d gaps, graph %d/%d\n",
				len(concepts), len(consensus), len(gaps),
				graph.Metadata.TotalNodes, graph.Metadata.TotalEdges)

			if concepts == nil {
				concepts = []string{}
			}
			if consensus == nil {
				consensus = []string{}
			}
			if gaps == nil {
				gaps = []types.ResearchGap{}
			}
			return types.StateUpdate{
				KeyConcepts:       concepts,
				ConsensusFindings: consensus,
				Contradictions:    contradictions,
				ResearchGaps:      gaps,
				KnowledgeGraph:    &graph,
			}, nil
		},
	}
}
