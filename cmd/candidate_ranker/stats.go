package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-ranker/internal/analytics"
	"github.com/jonathan/candidate-ranker/internal/criteria"
	"github.com/jonathan/candidate-ranker/internal/observability"
	"github.com/jonathan/candidate-ranker/internal/server"
)

var (
	statsFilters    filterFlags
	statsCandidates string
	statsOutput     string
	statsTopSkills  int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute summary counters and analytics",
	Long:  "Ranks the candidates matching the filter flags and writes the summary counters and analytics as JSON.",
	RunE:  runStats,
}

func init() {
	statsFilters.register(statsCmd)
	statsCmd.Flags().StringVarP(&statsCandidates, "candidates", "c", "", "Path to a JSON array of candidate records")
	statsCmd.Flags().StringVarP(&statsOutput, "out", "o", "", "Output file path (defaults to stdout)")
	statsCmd.Flags().IntVar(&statsTopSkills, "top-skills", analytics.DefaultTopSkills, "Number of most frequent skills to report")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if statsTopSkills < 0 {
		return fmt.Errorf("--top-skills must be non-negative")
	}

	c, err := statsFilters.criteria()
	if err != nil {
		return err
	}

	records, err := loadRecords(cmd, statsCandidates)
	if err != nil {
		return err
	}

	engine, closeEngine, err := newEngine(ctx, appConfig, "")
	if err != nil {
		return err
	}
	defer closeEngine()

	rs, err := engine.QueryContext(ctx, records, c)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	stats := server.StatsResponse{
		Summary:       rs.Summary,
		Analytics:     analytics.Analyze(rs.Candidates, statsTopSkills),
		ActiveFilters: criteria.ActiveFilterCount(c),
	}

	if appConfig.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintSummary(stats.Summary)
		printer.PrintAnalytics(stats.Analytics)
	}

	return writeJSON(cmd.OutOrStdout(), statsOutput, stats)
}
