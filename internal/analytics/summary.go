// Package analytics reduces candidate sets into dashboard counters and analytics statistics.
package analytics

import (
	"sort"

	"github.com/jonathan/candidate-ranker/internal/ranking"
	"github.com/jonathan/candidate-ranker/internal/types"
)

// Thresholds of the summary counters
const (
	ExperiencedYears   = 5.0
	TopMatchThreshold  = 0.8
	HighScoreThreshold = ranking.ExcellentThreshold
)

// Summarize computes the counters over results and the distinct skills over all,
// the unfiltered input, so filter options do not shrink as filters are applied.
func Summarize(results []types.EnrichedCandidate, all []types.CandidateRecord) types.Summary {
	summary := types.Summary{
		Total:          len(results),
		DistinctSkills: DistinctSkills(all),
	}

	for i := range results {
		c := &results[i]
		if c.OverallScore >= HighScoreThreshold {
			summary.HighScores++
		}
		if c.ExperienceYears >= ExperiencedYears {
			summary.Experienced++
		}
		if c.MatchScore >= TopMatchThreshold {
			summary.TopMatches++
		}
	}

	return summary
}

// DistinctSkills returns every non-empty skill in records once, sorted.
func DistinctSkills(records []types.CandidateRecord) []string {
	seen := make(map[string]bool)
	skills := make([]string, 0)
	for _, rec := range records {
		for _, skill := range rec.Skills {
			if skill == "" || seen[skill] {
				continue
			}
			seen[skill] = true
			skills = append(skills, skill)
		}
	}
	sort.Strings(skills)
	return skills
}
