package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/candidate-ranker/internal/anonymize"
	"github.com/jonathan/candidate-ranker/internal/export"
	"github.com/jonathan/candidate-ranker/internal/server"
	"github.com/jonathan/candidate-ranker/internal/types"
)

const (
	validCandidates  = "../../testdata/valid/candidates.json"
	missingIDRecords = "../../testdata/invalid/candidates_missing_id.json"
)

// sourceEnv are the variables that would otherwise select a source, cache or jitter from the environment.
var sourceEnv = []string{
	"CANDIDATES_FILE", "CANDIDATE_SOURCE_URL", "DATABASE_URL",
	"REDIS_ADDR", "SCORE_JITTER", "ANONYMIZATION_KEY", "LOG_LEVEL",
}

// resetFlags restores every flag to its default so commands can run repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command in-process and returns its stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range sourceEnv {
		t.Setenv(key, "")
	}
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func candidateIDs(rs types.ResultSet) []int64 {
	ids := make([]int64, len(rs.Candidates))
	for i, c := range rs.Candidates {
		ids[i] = c.ID
	}
	return ids
}

func TestQuery_Defaults(t *testing.T) {
	stdout, stderr, err := runCLI(t, "query", "--candidates", validCandidates)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	var rs types.ResultSet
	require.NoError(t, json.Unmarshal([]byte(stdout), &rs))
	assert.Equal(t, []int64{1, 2, 3}, candidateIDs(rs))
	assert.Equal(t, 3, rs.Summary.Total)
	assert.Equal(t, "Ada Byron", rs.Candidates[0].DisplayName)
	assert.Equal(t, "Anonymous", rs.Candidates[2].DisplayName)
}

func TestQuery_SearchWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "results.json")

	stdout, _, err := runCLI(t, "query", "--candidates", validCandidates, "--search", "ADA", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Successfully wrote 1 of 1 candidates")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rs types.ResultSet
	require.NoError(t, json.Unmarshal(data, &rs))
	assert.Equal(t, []int64{1}, candidateIDs(rs))
}

func TestQuery_SortAndPage(t *testing.T) {
	stdout, _, err := runCLI(t, "query", "--candidates", validCandidates,
		"--sort", "experience_years", "--order", "asc", "--limit", "1", "--offset", "1")
	require.NoError(t, err)

	var rs types.ResultSet
	require.NoError(t, json.Unmarshal([]byte(stdout), &rs))
	assert.Equal(t, []int64{2}, candidateIDs(rs))
	assert.Equal(t, 3, rs.Summary.Total)
}

func TestQuery_SkillFilterAndAnonymize(t *testing.T) {
	stdout, _, err := runCLI(t, "query", "--candidates", validCandidates, "--skill", "Unix,Rust", "--anonymize")
	require.NoError(t, err)

	var rs types.ResultSet
	require.NoError(t, json.Unmarshal([]byte(stdout), &rs))
	require.Equal(t, []int64{2}, candidateIDs(rs))
	assert.Equal(t, anonymize.Code(2), rs.Candidates[0].DisplayName)
	assert.NotContains(t, stdout, "Brian Kern")
	assert.NotContains(t, stdout, "brian@example.com")
}

func TestQuery_Verbose(t *testing.T) {
	_, stderr, err := runCLI(t, "query", "--candidates", validCandidates, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Showing 3 of 3 candidates")
}

func TestQuery_InvalidFilter(t *testing.T) {
	_, _, err := runCLI(t, "query", "--candidates", validCandidates, "--experience-min", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ExperienceMin")

	_, _, err = runCLI(t, "query", "--candidates", validCandidates, "--sort", "salary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sort")
}

func TestQuery_InvalidJitter(t *testing.T) {
	_, _, err := runCLI(t, "query", "--candidates", validCandidates, "--jitter", "wild")
	assert.Error(t, err)
}

func TestQuery_SchemaMismatchWarns(t *testing.T) {
	stdout, stderr, err := runCLI(t, "query", "--candidates", missingIDRecords)
	require.NoError(t, err)
	assert.Contains(t, stderr, "does not match the candidate schema")
	assert.NotEmpty(t, stdout)
}

func TestQuery_NoSource(t *testing.T) {
	_, _, err := runCLI(t, "query")
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoSource)
}

func TestQuery_CandidatesFromConfig(t *testing.T) {
	abs, err := filepath.Abs(validCandidates)
	require.NoError(t, err)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("candidates_file: "+abs+"\n"), 0644))

	stdout, _, err := runCLI(t, "--config", cfgPath, "query", "--search", "brian")
	require.NoError(t, err)

	var rs types.ResultSet
	require.NoError(t, json.Unmarshal([]byte(stdout), &rs))
	assert.Equal(t, []int64{2}, candidateIDs(rs))
}

func TestScore(t *testing.T) {
	stdout, _, err := runCLI(t, "score", "--candidates", validCandidates)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "SCORE")
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
	assert.Contains(t, lines[1], "Ada Byron")
	assert.Contains(t, lines[3], "Anonymous")
}

func TestScore_BreakdownAnonymized(t *testing.T) {
	stdout, _, err := runCLI(t, "score", "--candidates", validCandidates, "--breakdown", "--anonymize")
	require.NoError(t, err)

	assert.Contains(t, stdout, "EDUCATION")
	assert.Contains(t, stdout, anonymize.Code(1))
	assert.NotContains(t, stdout, "Ada Byron")
}

func TestAnonymize(t *testing.T) {
	stdout, _, err := runCLI(t, "anonymize", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "1\t"+anonymize.Code(1)+"\n2\t"+anonymize.Code(2)+"\n", stdout)
}

func TestAnonymize_Keyed(t *testing.T) {
	keyed, err := anonymize.NewKeyed([]byte("secret"))
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "anonymize", "--key", "secret", "7")
	require.NoError(t, err)
	assert.Equal(t, "7\t"+keyed.Label(7)+"\n", stdout)
}

func TestAnonymize_InvalidID(t *testing.T) {
	_, _, err := runCLI(t, "anonymize", "abc")
	assert.Error(t, err)

	_, _, err = runCLI(t, "anonymize")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	stdout, _, err := runCLI(t, "stats", "--candidates", validCandidates, "--match-min", "0.5")
	require.NoError(t, err)

	var stats server.StatsResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 2, stats.Summary.Total)
	assert.Equal(t, 1, stats.ActiveFilters)
	assert.InDelta(t, 8.0, stats.Analytics.AverageExperience, 1e-9)
}

func TestExport_XLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.xlsx")

	stdout, _, err := runCLI(t, "export", "--candidates", validCandidates, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Successfully exported 3 candidates")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(export.CandidatesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Ada Byron", rows[1][3])
}

func TestExport_JSONByExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")

	_, _, err := runCLI(t, "export", "--candidates", validCandidates, "--out", out, "--anonymize")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "json", doc["format"])
	assert.Equal(t, float64(3), doc["count"])
	assert.NotContains(t, string(data), "Ada Byron")
}

func TestExport_Errors(t *testing.T) {
	_, _, err := runCLI(t, "export", "--candidates", validCandidates)
	assert.Error(t, err, "missing --out")

	out := filepath.Join(t.TempDir(), "report.pdf")
	_, _, err = runCLI(t, "export", "--candidates", validCandidates, "--out", out, "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestCacheClear_RequiresRedis(t *testing.T) {
	_, _, err := runCLI(t, "cache-clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cache configured")
}

func TestRoot_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"jitter":"loud"}`), 0644))

	_, _, err := runCLI(t, "--config", cfgPath, "anonymize", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jitter")
}
