package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-ranker/internal/analytics"
	"github.com/jonathan/candidate-ranker/internal/export"
)

var (
	exportFilters           filterFlags
	exportCandidates        string
	exportOutput            string
	exportFormat            string
	exportIncludeResumeText bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ranked candidates to XLSX or JSON",
	Long: "Ranks the candidates matching the filter flags and writes them to an Excel workbook " +
		"(summary and ranked candidates sheets) or a JSON document. The format follows --format, " +
		"else the output file extension.",
	RunE: runExport,
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportCandidates, "candidates", "c", "", "Path to a JSON array of candidate records")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file path (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format: xlsx or json")
	exportCmd.Flags().BoolVar(&exportIncludeResumeText, "include-resume-text", false, "Include raw resume text")

	if err := exportCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	format := strings.ToLower(exportFormat)
	if format == "" {
		format = "xlsx"
		if strings.EqualFold(filepath.Ext(exportOutput), ".json") {
			format = "json"
		}
	}
	if format != "xlsx" && format != "json" {
		return fmt.Errorf("unsupported export format %q (want xlsx or json)", exportFormat)
	}

	c, err := exportFilters.criteria()
	if err != nil {
		return err
	}

	records, err := loadRecords(cmd, exportCandidates)
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

	opts := export.Options{IncludeResumeText: exportIncludeResumeText, Anonymize: c.Anonymize}
	now := time.Now()

	if err := ensureDir(exportOutput); err != nil {
		return err
	}

	path := exportOutput
	switch format {
	case "json":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", path, err)
		}
		werr := export.WriteJSON(f, export.NewDocument(rs, opts, now))
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("failed to write JSON export: %w", werr)
		}
	default:
		path, err = export.SaveExcel(path, rs, analytics.Analyze(rs.Candidates, analytics.DefaultTopSkills), opts, now)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully exported %d candidates to %s\n", len(rs.Candidates), path)
	return nil
}
