// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"strings"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// maxGraphSources caps how many sources become graph nodes.
const maxGraphSources = 10

// maxSourceLabel truncates source-node labels.
const maxSourceLabel = 60

// conceptID normalizes a concept label into a node id.
func conceptID(label string) string {
	id := strings.ToLower(label)
	id = strings.ReplaceAll(id, " ", "_")
	return strings.ReplaceAll(id, "-", "_")
}

// BuildGraph constructs the concept/source graph. Concepts are an
// opaque ordered list capped at maxConcepts; labels of 2 characters or
// fewer after trimming are skipped. Concepts normalizing to the same id
// collide last-wins. Sources are capped to the first maxGraphSources
// in input order. The output is deterministic for identical inputs.
func BuildGraph(sources []types.Source, concepts []string, maxConcepts int) types.KnowledgeGraph {
	if len(concepts) > maxConcepts {
		concepts = concepts[:maxConcepts]
	}

	// Ordered id list with last-wins label collision.
	var conceptOrder []string
	conceptLabels := map[string]string{}
	for _, concept := range concepts {
		concept = strings.TrimSpace(concept)
		if len(concept) <= 2 {
			continue
		}
		id := conceptID(concept)
		if _, seen := conceptLabels[id]; !seen {
			conceptOrder = append(conceptOrder, id)
		}
		conceptLabels[id] = concept
	}

	var nodes []types.GraphNode
	var edges []types.GraphEdge

	for _, id := range conceptOrder {
		nodes = append(nodes, types.GraphNode{
			ID:    id,
			Label: conceptLabels[id],
			Type:  types.NodeConcept,
		})
	}

	capped := sources
	if len(capped) > maxGraphSources {
		capped = capped[:maxGraphSources]
	}

	for _, src := range capped {
		label := src.Title
		if len(label) > maxSourceLabel {
			label = label[:maxSourceLabel]
		}
		nodes = append(nodes, types.GraphNode{
			ID:    src.ID,
			Label: label,
			Type:  types.NodeSource,
			URL:   src.URL,
		})
	}

	// Per-source concept scan: full-label substring match, or any word
	// of the label longer than 3 characters.
	for _, src := range capped {
		text := strings.ToLower(src.Title) + " " + strings.ToLower(src.Summary)
		matched := false
		for _, id := range conceptOrder {
			label := strings.ToLower(conceptLabels[id])
			if strings.Contains(text, label) || anyLongWordIn(text, label) {
				edges = append(edges, types.GraphEdge{
					Source:   src.ID,
					Target:   id,
					Relation: types.RelationDiscusses,
				})
				matched = true
			}
		}
		if !matched && len(conceptOrder) > 0 {
			edges = append(edges, types.GraphEdge{
				Source:   src.ID,
				Target:   conceptOrder[0],
				Relation: types.RelationMentions,
			})
		}
	}

	// Co-occurrence pass: exact-label matches only. A concept pair
	// supported by 2 or more distinct sources gets one related_to edge.
	type pair struct{ a, b string }
	var pairOrder []pair
	support := map[pair]map[string]bool{}

	for _, src := range capped {
		text := strings.ToLower(src.Title) + " " + strings.ToLower(src.Summary)
		var mentioned []string
		for _, id := range conceptOrder {
			if strings.Contains(text, strings.ToLower(conceptLabels[id])) {
				mentioned = append(mentioned, id)
			}
		}
		for i, a := range mentioned {
			for _, b := range mentioned[i+1:] {
				key := pair{a, b}
				if a > b {
					key = pair{b, a}
				}
				if support[key] == nil {
					support[key] = map[string]bool{}
					pairOrder = append(pairOrder, key)
				}
				support[key][src.ID] = true
			}
		}
	}

	for _, key := range pairOrder {
		if len(support[key]) >= 2 {
			edges = append(edges, types.GraphEdge{
				Source:   key.a,
				Target:   key.b,
				Relation: types.RelationRelated,
			})
		}
	}

	return types.KnowledgeGraph{
		Nodes: nodes,
		Edges: edges,
		Metadata: types.GraphMetadata{
			TotalNodes: len(nodes),
			TotalEdges: len(edges),
		},
	}
}

// anyLongWordIn reports whether any word of label longer than 3
// characters appears in text.
func anyLongWordIn(text, label string) bool {
	for _, word := range strings.Fields(label) {
		if len(word) > 3 && strings.Contains(text, word) {
			return true
		}
	}
	return false
}
