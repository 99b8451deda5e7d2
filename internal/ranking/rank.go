package ranking

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// Compare orders a and b ascending by key. Unknown keys compare equal.
func Compare(a, b *types.EnrichedCandidate, key types.SortKey) int {
	switch key {
	case types.SortByName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case types.SortByMatchScore:
		return cmp.Compare(a.MatchScore, b.MatchScore)
	case types.SortByExperienceYears:
		return cmp.Compare(a.ExperienceYears, b.ExperienceYears)
	case types.SortByOverallScore:
		return cmp.Compare(a.OverallScore, b.OverallScore)
	default:
		return 0
	}
}

// Comparator returns a comparison function for key and direction suitable for slices.SortStableFunc.
func Comparator(key types.SortKey, dir types.SortDirection) func(a, b types.EnrichedCandidate) int {
	sign := 1
	if dir == types.Descending {
		sign = -1
	}
	return func(a, b types.EnrichedCandidate) int {
		return sign * Compare(&a, &b, key)
	}
}

// Sort orders candidates in place. The sort is stable: candidates with equal keys
// keep their relative input order in both directions.
func Sort(candidates []types.EnrichedCandidate, key types.SortKey, dir types.SortDirection) {
	slices.SortStableFunc(candidates, Comparator(key, dir))
}
