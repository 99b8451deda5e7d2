package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in   string
		want SortKey
		ok   bool
	}{
		{"name", SortByName, true},
		{"matchScore", SortByMatchScore, true},
		{" MATCH_SCORE ", SortByMatchScore, true},
		{"experience", SortByExperienceYears, true},
		{"experienceYears", SortByExperienceYears, true},
		{"overallScore", SortByOverallScore, true},
		{"salary", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSortKey(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSortDirection(t *testing.T) {
	dir, ok := ParseSortDirection("Ascending")
	assert.True(t, ok)
	assert.Equal(t, Ascending, dir)

	dir, ok = ParseSortDirection("desc")
	assert.True(t, ok)
	assert.Equal(t, Descending, dir)

	_, ok = ParseSortDirection("sideways")
	assert.False(t, ok)
}

func TestDefaultCriteria(t *testing.T) {
	c := DefaultCriteria()

	assert.Equal(t, SortByOverallScore, c.SortKey)
	assert.Equal(t, Descending, c.SortDirection)
	assert.Equal(t, DefaultExperienceMax, c.ExperienceMax)
	assert.Empty(t, c.RequiredSkills)
	assert.False(t, c.Anonymize)
}
