package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-ranker/internal/observability"
	"github.com/jonathan/candidate-ranker/internal/pipeline"
)

var (
	queryFilters    filterFlags
	queryCandidates string
	queryOutput     string
	queryJitter     string
	queryLimit      int
	queryOffset     int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search, filter and rank candidates",
	Long: "Scores every candidate record, applies the search and filter flags, sorts the matches " +
		"and writes the ranked result set with its summary counters as JSON.",
	RunE: runQuery,
}

func init() {
	queryFilters.register(queryCmd)
	queryCmd.Flags().StringVarP(&queryCandidates, "candidates", "c", "", "Path to a JSON array of candidate records")
	queryCmd.Flags().StringVarP(&queryOutput, "out", "o", "", "Output file path (defaults to stdout)")
	queryCmd.Flags().StringVar(&queryJitter, "jitter", "", "Score jitter: none, id or random (overrides config)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum number of candidates to return (0 for all)")
	queryCmd.Flags().IntVar(&queryOffset, "offset", 0, "Number of ranked candidates to skip")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if queryLimit < 0 || queryOffset < 0 {
		return fmt.Errorf("--limit and --offset must be non-negative")
	}

	c, err := queryFilters.criteria()
	if err != nil {
		return err
	}

	records, err := loadRecords(cmd, queryCandidates)
	if err != nil {
		return err
	}

	engine, closeEngine, err := newEngine(ctx, appConfig, queryJitter)
	if err != nil {
		return err
	}
	defer closeEngine()

	rs, err := engine.QueryContext(ctx, records, c)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	rs = pipeline.Page(rs, queryLimit, queryOffset)
	if c.Anonymize {
		rs = rs.Masked()
	}

	if appConfig.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintCriteria(c)
		printer.PrintResultSet(rs)
		printer.PrintSummary(rs.Summary)
	}

	if err := writeJSON(cmd.OutOrStdout(), queryOutput, rs); err != nil {
		return err
	}
	if queryOutput != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully wrote %d of %d candidates to %s\n",
			len(rs.Candidates), rs.Summary.Total, queryOutput)
	}
	return nil
}
