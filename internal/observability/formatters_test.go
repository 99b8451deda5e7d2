package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/candidate-ranker/internal/analytics"
	"github.com/jonathan/candidate-ranker/internal/schemas"
	"github.com/jonathan/candidate-ranker/internal/types"
	"github.com/stretchr/testify/assert"
)

func enriched(id int64, name string, score int, skills ...string) types.EnrichedCandidate {
	return types.EnrichedCandidate{
		CandidateRecord:     types.CandidateRecord{ID: id, Name: name, Skills: skills, MatchScore: 0.75},
		OverallScore:        score,
		AnonymizedLabel:     "ABC123",
		ScoreLabel:          "Excellent",
		DisplayName:         name,
		FormattedExperience: "3 Years",
	}
}

func TestPrintCriteria(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	c := types.DefaultCriteria()
	c.SearchTerm = "python"
	c.RequiredSkills = []string{"Go", "SQL"}
	c.Anonymize = true

	p.PrintCriteria(c)
	output := buf.String()

	assert.Contains(t, output, "QUERY CRITERIA")
	assert.Contains(t, output, "python")
	assert.Contains(t, output, "0 - 20 years")
	assert.Contains(t, output, "Go, SQL")
	assert.Contains(t, output, "overall_score desc")
	assert.Contains(t, output, "Anonymized:  yes")
}

func TestPrintCriteria_NoSearch(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCriteria(types.DefaultCriteria())

	assert.Contains(t, buf.String(), "(none)")
	assert.NotContains(t, buf.String(), "Skills:")
}

func TestPrintResultSet(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rs := types.ResultSet{
		Candidates: []types.EnrichedCandidate{
			enriched(1, "Ada", 83, "Python", "Go"),
			enriched(2, "Brian", 30),
		},
		Summary: types.Summary{Total: 4},
	}

	p.PrintResultSet(rs)
	output := buf.String()

	assert.Contains(t, output, "RANKED CANDIDATES")
	assert.Contains(t, output, "Showing 2 of 4 candidates")
	assert.Contains(t, output, "#1  Ada [ABC123]")
	assert.Contains(t, output, "Score: 83 (Excellent)")
	assert.Contains(t, output, "Match: 75%")
	assert.Contains(t, output, "Python, Go")
	assert.Contains(t, output, "#2  Brian")
}

func TestPrintResultSet_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResultSet(types.ResultSet{})

	assert.Contains(t, buf.String(), "No candidates match")
}

func TestPrintResultSet_TruncatesList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var cands []types.EnrichedCandidate
	for i := 0; i < 8; i++ {
		cands = append(cands, enriched(int64(i), "Candidate", 50))
	}

	p.PrintResultSet(types.ResultSet{Candidates: cands, Summary: types.Summary{Total: 8}})

	assert.Contains(t, buf.String(), "... and 3 more candidates")
	assert.NotContains(t, buf.String(), "#6")
}

func TestPrintResultSet_LongLinesStayInBox(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	long := enriched(1, strings.Repeat("Ñ", 80), 50, strings.Repeat("skill", 20))
	p.PrintResultSet(types.ResultSet{Candidates: []types.EnrichedCandidate{long}, Summary: types.Summary{Total: 1}})

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(types.Summary{
		Total: 6, HighScores: 1, Experienced: 2, TopMatches: 3,
		DistinctSkills: []string{"Go", "Python"},
	})

	output := buf.String()
	assert.Contains(t, output, "SUMMARY")
	assert.Contains(t, output, "Total:        6")
	assert.Contains(t, output, "Top Matches:  3")
	assert.Contains(t, output, "2 distinct")
}

func TestPrintAnalytics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	a := analytics.Analyze([]types.EnrichedCandidate{
		enriched(1, "Ada", 83, "Python", "Go"),
		enriched(2, "Brian", 30, "Go"),
	}, 0)

	p.PrintAnalytics(a)
	output := buf.String()

	assert.Contains(t, output, "ANALYTICS")
	assert.Contains(t, output, "Avg Match:      75.0%")
	assert.Contains(t, output, "Entry Level (0-2 years)")
	assert.Contains(t, output, "• Go (2)")
}

func TestPrintSchemaWarning(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSchemaWarning("candidates.json", nil)
	assert.Empty(t, buf.String())

	p.PrintSchemaWarning("candidates.json", errors.New("validation failed:\n  1. 0: id is required\n"))
	assert.Contains(t, buf.String(), "candidates.json does not match")
	assert.Contains(t, buf.String(), "1. 0: id is required")
	assert.NotContains(t, buf.String(), "invalid record")
}

func TestPrintSchemaWarning_CountsInvalidRecords(t *testing.T) {
	var buf bytes.Buffer
	err := &schemas.ValidationError{Errors: []schemas.FieldError{
		{Field: "0", Record: 0, Message: "id is required"},
		{Field: "2.skills", Record: 2, Attribute: "skills", Message: "Invalid type"},
		{Field: "2.match_score", Record: 2, Attribute: "match_score", Message: "Must be less than or equal to 1"},
	}}

	NewPrinter(&buf).PrintSchemaWarning("candidates.json", err)

	assert.Contains(t, buf.String(), "2 invalid record(s)")
	assert.Contains(t, buf.String(), "record 2 skills: Invalid type")
}
