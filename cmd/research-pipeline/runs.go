// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-pipeline/internal/report"
	"github.com/pdiddy/research-pipeline/internal/store"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted pipeline runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListRuns(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(records)
		}

		if len(records) == 0 {
			fmt.Println("No runs stored.")
			return nil
		}
		fmt.Printf("%-14s %-10s %-10s %-20s %8s %10s %8s  %s\n",
			"ID", "DEPTH", "STATUS", "STARTED", "FOUND", "VALIDATED", "QUALITY", "QUERY")
		for _, rec := range records {
			fmt.Printf("%-14s %-10s %-10s %-20s %8d %10d %8.1f  %s\n",
				rec.ID, rec.Depth, rec.Status, rec.StartedAt.Format(time.RFC3339),
				rec.SourcesFound, rec.SourcesValidated, rec.QualityAvg, rec.Query)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the stored state of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		state, err := st.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(state)
		}
		fmt.Println(report.FormatSummary(state))
		return nil
	},
}

var runsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over sources from all stored runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		matches, err := st.SearchSources(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(matches)
		}

		if len(matches) == 0 {
			fmt.Println("No matching sources.")
			return nil
		}
		for _, m := range matches {
			fmt.Printf("%-14s %-20s %s\n", m.RunID, m.SourceID, m.Title)
			if m.URL != "" {
				fmt.Printf("%-14s %-20s %s\n", "", "", m.URL)
			}
		}
		return nil
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run summaries to export.yaml in the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.ExportYAML(cmd.Context())
	},
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	return store.NewStore(types.StoreConfig{DataDir: dataDir})
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	runsCmd.PersistentFlags().String("data-dir", "data", "base directory for the run store")
	runsCmd.PersistentFlags().Bool("json", false, "print output as JSON")
	runsSearchCmd.Flags().Int("limit", 20, "maximum number of search results")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsSearchCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}
