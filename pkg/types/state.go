// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// WorkflowStatus tracks the lifecycle of a pipeline run.
type WorkflowStatus string

const (
	StatusInitialized WorkflowStatus = "initialized"
	StatusRunning     WorkflowStatus = "running"
	StatusCompleted   WorkflowStatus = "completed"
	StatusFailed      WorkflowStatus = "failed"
)

// StageComplete is the CurrentStage sentinel after all stages finish.
const StageComplete = "complete"

// Depth selects a research depth preset.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// PipelineState is the shared record threaded through every pipeline
// stage. The pipeline runner owns the single instance for a run's
// lifetime; stages receive a read view and return a StateUpdate.
type PipelineState struct {
	// Query is the research question driving the run.
	Query string `json:"query" yaml:"query"`

	// Depth is the research depth preset name.
	Depth Depth `json:"research_depth" yaml:"research_depth"`

	// Discovery phase.
	RawSources        []Source           `json:"raw_sources" yaml:"raw_sources"`
	DiscoveryMetadata *DiscoveryMetadata `json:"discovery_metadata,omitempty" yaml:"discovery_metadata,omitempty"`

	// Validation phase.
	ValidatedSources  []Source            `json:"validated_sources" yaml:"validated_sources"`
	ValidationScores  []ScoreRecord       `json:"validation_scores" yaml:"validation_scores"`
	CredibilityReport *CredibilitySummary `json:"credibility_report,omitempty" yaml:"credibility_report,omitempty"`
	SourceQualityAvg  float64             `json:"source_quality_avg" yaml:"source_quality_avg"`

	// Synthesis phase.
	KeyConcepts       []string        `json:"key_concepts" yaml:"key_concepts"`
	ConsensusFindings []string        `json:"consensus_findings" yaml:"consensus_findings"`
	Contradictions    []Contradiction `json:"contradictions" yaml:"contradictions"`
	ResearchGaps      []ResearchGap   `json:"research_gaps" yaml:"research_gaps"`
	KnowledgeGraph    *KnowledgeGraph `json:"knowledge_graph,omitempty" yaml:"knowledge_graph,omitempty"`

	// Reporting phase.
	ExecutiveSummary string       `json:"executive_summary" yaml:"executive_summary"`
	DetailedReport   string       `json:"detailed_report" yaml:"detailed_report"`
	CitationMap      *CitationMap `json:"citation_map,omitempty" yaml:"citation_map,omitempty"`

	// Monitoring phase.
	MonitoringEnabled bool           `json:"monitoring_enabled" yaml:"monitoring_enabled"`
	AlertTriggers     []AlertTrigger `json:"alert_triggers" yaml:"alert_triggers"`
	TrendAnalysis     *TrendAnalysis `json:"trend_analysis,omitempty" yaml:"trend_analysis,omitempty"`

	// Orchestration.
	CurrentStage string         `json:"current_stage" yaml:"current_stage"`
	Status       WorkflowStatus `json:"workflow_status" yaml:"workflow_status"`
	Errors       []string       `json:"errors" yaml:"errors"`

	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// NewPipelineState returns an initialized state for a run.
func NewPipelineState(query string, depth Depth) *PipelineState {
	return &PipelineState{
		Query:        query,
		Depth:        depth,
		CurrentStage: "orchestrator",
		Status:       StatusInitialized,
		StartedAt:    time.Now().UTC(),
	}
}

// StateUpdate is the partial update a stage returns for merging into the
// shared state. A nil slice, pointer, or unset scalar leaves the
// corresponding state field untouched; a non-nil value replaces it
// wholesale (last writer wins per field, no deep merge). Stages that mean
// "set to empty" must return a non-nil empty slice.
type StateUpdate struct {
	RawSources        []Source
	DiscoveryMetadata *DiscoveryMetadata

	ValidatedSources  []Source
	ValidationScores  []ScoreRecord
	CredibilityReport *CredibilitySummary
	SourceQualityAvg  *float64

	KeyConcepts       []string
	ConsensusFindings []string
	Contradictions    []Contradiction
	ResearchGaps      []ResearchGap
	KnowledgeGraph    *KnowledgeGraph

	ExecutiveSummary *string
	DetailedReport   *string
	CitationMap      *CitationMap

	MonitoringEnabled *bool
	AlertTriggers     []AlertTrigger
	TrendAnalysis     *TrendAnalysis
}

// Apply merges the update into state, field by field.
func (u StateUpdate) Apply(state *PipelineState) {
	if u.RawSources != nil {
		state.RawSources = u.RawSources
	}
	if u.DiscoveryMetadata != nil {
		state.DiscoveryMetadata = u.DiscoveryMetadata
	}
	if u.ValidatedSources != nil {
		state.ValidatedSources = u.ValidatedSources
	}
	if u.ValidationScores != nil {
		state.ValidationScores = u.ValidationScores
	}
	if u.CredibilityReport != nil {
		state.CredibilityReport = u.CredibilityReport
	}
	if u.SourceQualityAvg != nil {
		state.SourceQualityAvg = *u.SourceQualityAvg
	}
	if u.KeyConcepts != nil {
		state.KeyConcepts = u.KeyConcepts
	}
	if u.ConsensusFindings != nil {
		state.ConsensusFindings = u.ConsensusFindings
	}
	if u.Contradictions != nil {
		state.Contradictions = u.Contradictions
	}
	if u.ResearchGaps != nil {
		state.ResearchGaps = u.ResearchGaps
	}
	if u.KnowledgeGraph != nil {
		state.KnowledgeGraph = u.KnowledgeGraph
	}
	if u.ExecutiveSummary != nil {
		state.ExecutiveSummary = *u.ExecutiveSummary
	}
	if u.DetailedReport != nil {
		state.DetailedReport = *u.DetailedReport
	}
	if u.CitationMap != nil {
		state.CitationMap = u.CitationMap
	}
	if u.MonitoringEnabled != nil {
		state.MonitoringEnabled = *u.MonitoringEnabled
	}
	if u.AlertTriggers != nil {
		state.AlertTriggers = u.AlertTriggers
	}
	if u.TrendAnalysis != nil {
		state.TrendAnalysis = u.TrendAnalysis
	}
}
