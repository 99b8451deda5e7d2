package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var anonymizeKey string

var anonymizeCmd = &cobra.Command{
	Use:   "anonymize ID...",
	Short: "Print the anonymized label of candidate ids",
	Long: "Prints the six-character display code of each id. With --key (or anonymization_key in config) " +
		"labels are derived from a keyed hash and cannot be reversed to the id.",
	Args: cobra.MinimumNArgs(1),
	RunE: runAnonymize,
}

func init() {
	anonymizeCmd.Flags().StringVar(&anonymizeKey, "key", "", "Secret key for one-way labels (overrides config)")
	rootCmd.AddCommand(anonymizeCmd)
}

func runAnonymize(cmd *cobra.Command, args []string) error {
	key := appConfig.AnonymizationKey
	if anonymizeKey != "" {
		key = anonymizeKey
	}

	labeler, err := newLabeler(key)
	if err != nil {
		return err
	}

	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid candidate id %q", arg)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id, labeler.Label(id))
	}
	return nil
}
