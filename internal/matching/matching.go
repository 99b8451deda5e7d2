// Package matching decides whether an enriched candidate satisfies a query.
package matching

import (
	"strconv"
	"strings"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// Matches reports whether c passes every rule of criteria:
// search term, experience range, minimum match score and required skills.
// An inverted experience range matches nothing.
func Matches(c *types.EnrichedCandidate, criteria *types.QueryCriteria) bool {
	if criteria.SearchTerm != "" && !MatchesSearch(c, criteria.SearchTerm) {
		return false
	}

	if c.ExperienceYears < criteria.ExperienceMin || c.ExperienceYears > criteria.ExperienceMax {
		return false
	}

	if c.MatchScore < criteria.MatchScoreMin {
		return false
	}

	if len(criteria.RequiredSkills) > 0 && !HasAnySkill(c.Skills, criteria.RequiredSkills) {
		return false
	}

	return true
}

// MatchesSearch reports whether term occurs, case-insensitively, in the name,
// any skill, or the decimal form of the experience years.
func MatchesSearch(c *types.EnrichedCandidate, term string) bool {
	needle := strings.ToLower(term)

	if strings.Contains(strings.ToLower(c.Name), needle) {
		return true
	}

	for _, skill := range c.Skills {
		if strings.Contains(strings.ToLower(skill), needle) {
			return true
		}
	}

	experience := strconv.FormatFloat(c.ExperienceYears, 'f', -1, 64)
	return strings.Contains(experience, needle)
}

// HasAnySkill reports whether skills and required share at least one exact entry.
func HasAnySkill(skills, required []string) bool {
	if len(skills) == 0 {
		return false
	}
	have := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		have[s] = struct{}{}
	}
	for _, r := range required {
		if _, ok := have[r]; ok {
			return true
		}
	}
	return false
}

// Filter returns the candidates matching criteria, preserving input order.
func Filter(candidates []types.EnrichedCandidate, criteria *types.QueryCriteria) []types.EnrichedCandidate {
	out := make([]types.EnrichedCandidate, 0, len(candidates))
	for i := range candidates {
		if Matches(&candidates[i], criteria) {
			out = append(out, candidates[i])
		}
	}
	return out
}
