// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NodeType tags a knowledge graph node as a concept or a source.
type NodeType string

const (
	NodeConcept NodeType = "concept"
	NodeSource  NodeType = "source"
)

// EdgeRelation is the relation carried by a knowledge graph edge.
type EdgeRelation string

const (
	// RelationDiscusses links a source to a concept found in its text.
	RelationDiscusses EdgeRelation = "discusses"

	// RelationMentions is the fallback link for sources matching no concept.
	RelationMentions EdgeRelation = "mentions"

	// RelationRelated links two concepts co-mentioned by several sources.
	RelationRelated EdgeRelation = "related_to"
)

// GraphNode is a node in the knowledge graph. IDs are unique across the
// node set.
type GraphNode struct {
	ID    string   `json:"id" yaml:"id"`
	Label string   `json:"label" yaml:"label"`
	Type  NodeType `json:"type" yaml:"type"`

	// URL is set for source nodes only.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// GraphEdge is a directed edge between two node IDs. Edges reference
// only existing nodes.
type GraphEdge struct {
	Source   string       `json:"source" yaml:"source"`
	Target   string       `json:"target" yaml:"target"`
	Relation EdgeRelation `json:"relation" yaml:"relation"`
}

// GraphMetadata carries derived counts. Recomputed whenever the graph is
// built, never hand-maintained.
type GraphMetadata struct {
	TotalNodes int `json:"total_nodes" yaml:"total_nodes"`
	TotalEdges int `json:"total_edges" yaml:"total_edges"`
}

// KnowledgeGraph is the concept/source graph produced by synthesis.
type KnowledgeGraph struct {
	Nodes    []GraphNode   `json:"nodes" yaml:"nodes"`
	Edges    []GraphEdge   `json:"edges" yaml:"edges"`
	Metadata GraphMetadata `json:"metadata" yaml:"metadata"`
}
