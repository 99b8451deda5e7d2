package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichedCandidate_Masked(t *testing.T) {
	c := EnrichedCandidate{
		CandidateRecord: CandidateRecord{
			ID: 1, Name: "Ada", Email: "ada@x.com", Phone: "555", ResumeText: "resume",
			Education: "MSc", Skills: []string{"Go"}, ExperienceYears: 12, MatchScore: 0.9,
		},
		OverallScore: 83, AnonymizedLabel: "7ZQHHH", DisplayName: "7ZQHHH",
	}

	m := c.Masked()

	assert.Empty(t, m.Name)
	assert.Empty(t, m.Email)
	assert.Empty(t, m.Phone)
	assert.Empty(t, m.ResumeText)
	assert.Equal(t, "MSc", m.Education)
	assert.Equal(t, []string{"Go"}, m.Skills)
	assert.Equal(t, 83, m.OverallScore)
	assert.Equal(t, "7ZQHHH", m.DisplayName)
	assert.Equal(t, "Ada", c.Name)
}

func TestResultSet_MaskedLeavesOriginal(t *testing.T) {
	rs := ResultSet{
		Candidates: []EnrichedCandidate{{CandidateRecord: CandidateRecord{ID: 1, Email: "a@x.com"}}},
		Summary:    Summary{Total: 1},
	}

	m := rs.Masked()

	require.Len(t, m.Candidates, 1)
	assert.Empty(t, m.Candidates[0].Email)
	assert.Equal(t, "a@x.com", rs.Candidates[0].Email)
	assert.Equal(t, 1, m.Summary.Total)
}
