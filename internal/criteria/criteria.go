// Package criteria turns user-facing search controls into validated, defaulted query criteria.
// Invalid numeric input falls back to the default rather than failing the query.
package criteria

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// URL query parameter names
const (
	ParamSearch        = "q"
	ParamExperienceMin = "experience_min"
	ParamExperienceMax = "experience_max"
	ParamMatchScoreMin = "match_score_min"
	ParamSkills        = "skills"
	ParamSort          = "sort"
	ParamOrder         = "order"
	ParamAnonymize     = "anonymize"
)

// FromValues builds criteria from URL query values, defaulting anything missing or malformed.
func FromValues(v url.Values) types.QueryCriteria {
	c := types.DefaultCriteria()

	c.SearchTerm = strings.TrimSpace(v.Get(ParamSearch))
	c.ExperienceMin = ParseFloat(v.Get(ParamExperienceMin), c.ExperienceMin)
	c.ExperienceMax = ParseFloat(v.Get(ParamExperienceMax), c.ExperienceMax)
	c.MatchScoreMin = ParseFloat(v.Get(ParamMatchScoreMin), c.MatchScoreMin)
	c.RequiredSkills = SplitSkills(v[ParamSkills])
	c.Anonymize = ParseBool(v.Get(ParamAnonymize), false)

	if key, ok := types.ParseSortKey(v.Get(ParamSort)); ok {
		c.SortKey = key
	}
	if dir, ok := types.ParseSortDirection(v.Get(ParamOrder)); ok {
		c.SortDirection = dir
	}

	return c
}

// ParseFloat parses s, returning def when s is empty, malformed, NaN or infinite.
func ParseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// ParseBool parses s, returning def when s is empty or malformed.
func ParseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return b
}

// SplitSkills flattens repeated and comma-separated skill values, trimming blanks and duplicates.
// Skills keep their case, since skill matching is exact.
func SplitSkills(values []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// ActiveFilterCount counts the filters narrowed from their defaults:
// the experience range, the minimum match score and the skill selection.
func ActiveFilterCount(c types.QueryCriteria) int {
	n := 0
	if c.ExperienceMin > types.DefaultExperienceMin || c.ExperienceMax < types.DefaultExperienceMax {
		n++
	}
	if c.MatchScoreMin > types.DefaultMatchScoreMin {
		n++
	}
	if len(c.RequiredSkills) > 0 {
		n++
	}
	return n
}
