// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-pipeline/internal/discover"
	"github.com/pdiddy/research-pipeline/internal/llm"
	"github.com/pdiddy/research-pipeline/internal/pipeline"
	"github.com/pdiddy/research-pipeline/internal/report"
	"github.com/pdiddy/research-pipeline/internal/secrets"
	"github.com/pdiddy/research-pipeline/internal/store"
	"github.com/pdiddy/research-pipeline/internal/synthesize"
	"github.com/pdiddy/research-pipeline/internal/validate"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run the research pipeline for a query",
	Long: `Run executes the full pipeline for a research question: discovery,
validation, synthesis, reporting, and monitoring setup. The run is
persisted to the local store whether it completes or fails, and a report
file is written on success.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetString("depth")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		reportsDir, _ := cmd.Flags().GetString("reports-dir")
		model, _ := cmd.Flags().GetString("model")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg := types.DefaultPipelineConfig()
		if v := viper.GetString("ai.model"); v != "" {
			cfg.AI.Model = v
		}
		if v := viper.GetString("store.data_dir"); v != "" {
			cfg.Store.DataDir = v
		}
		if v := viper.GetString("report.reports_dir"); v != "" {
			cfg.Report.ReportsDir = v
		}

		// Flags win over the config file.
		cfg.Depth = types.DepthPreset(types.Depth(depth))
		if cmd.Flags().Changed("data-dir") || cfg.Store.DataDir == "" {
			cfg.Store.DataDir = dataDir
		}
		if cmd.Flags().Changed("reports-dir") || cfg.Report.ReportsDir == "" {
			cfg.Report.ReportsDir = reportsDir
		}
		if model != "" {
			cfg.AI.Model = model
		}
		cfg.AI.APIKey = secrets.Get(loadedSecrets, "groq-api-key", "RESEARCH_PIPELINE_GROQ_API_KEY")
		cfg.Search.TavilyAPIKey = secrets.Get(loadedSecrets, "tavily-api-key", "RESEARCH_PIPELINE_TAVILY_API_KEY")
		cfg.Search.SemanticScholarAPIKey = secrets.Get(loadedSecrets, "semantic-scholar-api-key", "RESEARCH_PIPELINE_SEMANTIC_SCHOLAR_API_KEY")

		if cfg.AI.APIKey == "" {
			fmt.Fprintln(os.Stderr, "warning: no Groq API key configured; relevance checks and narrative generation will degrade")
		}

		httpClient := &http.Client{Timeout: cfg.Search.Timeout}
		client := llm.NewGroqClient(cfg.AI, httpClient)

		backends := []discover.Backend{
			&discover.ArxivBackend{Client: httpClient},
			&discover.SemanticScholarBackend{Client: httpClient, APIKey: cfg.Search.SemanticScholarAPIKey},
		}
		if cfg.Search.TavilyAPIKey != "" {
			backends = append(backends, &discover.TavilyBackend{Client: httpClient, APIKey: cfg.Search.TavilyAPIKey})
		}

		w := os.Stderr
		stages := []pipeline.Stage{
			discover.Stage(backends, llm.QueryReformulator{Client: client}, cfg.Depth, cfg.Search, w),
			validate.Stage(llm.RelevanceJudge{Client: client}, validate.DefaultScoringTable(), w),
			synthesize.Stage(synthesize.Extractor{Client: client, Depth: cfg.Depth}, w),
			report.ReportingStage(report.Reporter{Client: client}, w),
			report.MonitoringStage(w),
		}

		state := types.NewPipelineState(args[0], types.Depth(depth))
		runErr := pipeline.NewRunner(stages, w).Run(cmd.Context(), state)

		// Persist whatever we have, completed or failed.
		if st, err := store.NewStore(cfg.Store); err != nil {
			fmt.Fprintf(os.Stderr, "warning: opening store: %v\n", err)
		} else {
			defer st.Close()
			if id, err := st.SaveRun(cmd.Context(), state); err != nil {
				fmt.Fprintf(os.Stderr, "warning: saving run: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "Saved run %s\n", id)
			}
		}

		if asJSON {
			out, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding state: %w", err)
			}
			fmt.Println(string(out))
		} else {
			fmt.Println(report.FormatSummary(state))
		}

		if runErr != nil {
			return runErr
		}

		path, err := report.WriteReportFile(state, cfg.Report)
		if err != nil {
			return fmt.Errorf("writing report file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
		return nil
	},
}

func init() {
	runCmd.Flags().String("depth", "standard", "research depth: quick, standard, or deep")
	runCmd.Flags().String("data-dir", "data", "base directory for the run store")
	runCmd.Flags().String("reports-dir", "output/reports", "directory for generated report files")
	runCmd.Flags().String("model", "", "override the language model identifier")
	runCmd.Flags().Bool("json", false, "print the full run state as JSON instead of the summary")

	rootCmd.AddCommand(runCmd)
}
