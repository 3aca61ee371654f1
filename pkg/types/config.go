package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-pipeline/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call the language model.
type AIConfig struct {
	// Model is the model identifier (e.g. "llama-3.1-8b-instant").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the completion length (default 4000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature (default 0.3).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxRetries is the number of retry attempts for failed API calls
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the discovery stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// TavilyAPIKey enables the web search backend when set.
	TavilyAPIKey string `json:"tavily_api_key,omitempty" yaml:"tavily_api_key,omitempty"`
}

// StoreConfig holds settings for the run store.
type StoreConfig struct {
	// DataDir is the base directory for persisted runs (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ReportConfig holds settings for report output.
type ReportConfig struct {
	// ReportsDir is the directory for generated report files.
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`
}

// DepthConfig bundles the per-depth limits applied across stages. The
// three presets are fixed configurations selected by Depth name.
type DepthConfig struct {
	// MaxArxivResults caps arXiv backend results.
	MaxArxivResults int `json:"max_arxiv_results" yaml:"max_arxiv_results"`

	// MaxScholarResults caps Semantic Scholar backend results.
	MaxScholarResults int `json:"max_scholar_results" yaml:"max_scholar_results"`

	// MaxWebResults caps web backend results.
	MaxWebResults int `json:"max_web_results" yaml:"max_web_results"`

	// Reformulate enables LLM query reformulation when discovery returns
	// fewer than ReformulateBelow sources.
	Reformulate      bool `json:"reformulate" yaml:"reformulate"`
	ReformulateBelow int  `json:"reformulate_below" yaml:"reformulate_below"`

	// MaxConcepts caps concepts extracted during synthesis.
	MaxConcepts int `json:"max_concepts" yaml:"max_concepts"`

	// MaxConsensusFindings caps consensus findings.
	MaxConsensusFindings int `json:"max_consensus_findings" yaml:"max_consensus_findings"`

	// MaxResearchGaps caps generated research gaps.
	MaxResearchGaps int `json:"max_research_gaps" yaml:"max_research_gaps"`
}

// DepthPreset returns the DepthConfig for a depth name. Unknown names
// fall back to the standard preset.
func DepthPreset(depth Depth) DepthConfig {
	switch depth {
	case DepthQuick:
		return DepthConfig{
			MaxArxivResults:      4,
			MaxScholarResults:    3,
			MaxWebResults:        4,
			Reformulate:          false,
			ReformulateBelow:     0,
			MaxConcepts:          8,
			MaxConsensusFindings: 4,
			MaxResearchGaps:      3,
		}
	case DepthDeep:
		return DepthConfig{
			MaxArxivResults:      12,
			MaxScholarResults:    8,
			MaxWebResults:        12,
			Reformulate:          true,
			ReformulateBelow:     15,
			MaxConcepts:          25,
			MaxConsensusFindings: 10,
			MaxResearchGaps:      8,
		}
	default:
		return DepthConfig{
			MaxArxivResults:      8,
			MaxScholarResults:    5,
			MaxWebResults:        8,
			Reformulate:          true,
			ReformulateBelow:     15,
			MaxConcepts:          15,
			MaxConsensusFindings: 7,
			MaxResearchGaps:      5,
		}
	}
}

// PipelineConfig groups all stage configurations for a run.
type PipelineConfig struct {
	Search SearchConfig `json:"search" yaml:"search"`
	AI     AIConfig     `json:"ai" yaml:"ai"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Report ReportConfig `json:"report" yaml:"report"`
	Depth  DepthConfig  `json:"depth" yaml:"depth"`
}

// DefaultPipelineConfig returns a PipelineConfig with standard-depth
// limits and sensible defaults for local use.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "research-pipeline/0.1",
			},
		},
		AI: AIConfig{
			Model:       "llama-3.1-8b-instant",
			MaxTokens:   4000,
			Temperature: 0.3,
			MaxRetries:  3,
		},
		Store: StoreConfig{
			DataDir: "data",
		},
		Report: ReportConfig{
			ReportsDir: "output/reports",
		},
		Depth: DepthPreset(DepthStandard),
	}
}
