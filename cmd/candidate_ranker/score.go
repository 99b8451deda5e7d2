package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-ranker/internal/ranking"
)

var (
	scoreCandidates string
	scoreJitter     string
	scoreBreakdown  bool
	scoreAnonymize  bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the overall score of every candidate",
	Long:  "Prints the id, display label and overall score of each candidate record in input order.",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreCandidates, "candidates", "c", "", "Path to a JSON array of candidate records")
	scoreCmd.Flags().StringVar(&scoreJitter, "jitter", "", "Score jitter: none, id or random (overrides config)")
	scoreCmd.Flags().BoolVar(&scoreBreakdown, "breakdown", false, "Also print the weighted scoring components")
	scoreCmd.Flags().BoolVar(&scoreAnonymize, "anonymize", false, "Display anonymized labels instead of names")

	rootCmd.AddCommand(scoreCmd)
}

//nolint:errcheck // tabular output to the command writer
func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	records, err := loadRecords(cmd, scoreCandidates)
	if err != nil {
		return err
	}

	engine, closeEngine, err := newEngine(ctx, appConfig, scoreJitter)
	if err != nil {
		return err
	}
	defer closeEngine()

	enriched, err := engine.Enrich(ctx, records, scoreAnonymize)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if scoreBreakdown {
		fmt.Fprintln(tw, "ID\tLABEL\tSCORE\tRATING\tMATCH\tEXPERIENCE\tSKILLS\tCONTACT\tEDUCATION\tBONUS")
	} else {
		fmt.Fprintln(tw, "ID\tLABEL\tSCORE\tRATING")
	}

	for i := range enriched {
		c := &enriched[i]
		if !scoreBreakdown {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", c.ID, c.DisplayName, c.OverallScore, c.ScoreLabel)
			continue
		}
		b := ranking.Breakdown(&c.CandidateRecord)
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%+.0f\n",
			c.ID, c.DisplayName, c.OverallScore, c.ScoreLabel,
			b.Match, b.Experience, b.Skills, b.Contact, b.Education, b.Bonus)
	}

	return tw.Flush()
}
