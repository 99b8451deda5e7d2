package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-ranker/internal/criteria"
	"github.com/jonathan/candidate-ranker/internal/types"
)

// filterFlags are the search, filter and sort flags shared by query, stats and export.
type filterFlags struct {
	search        string
	experienceMin float64
	experienceMax float64
	matchMin      float64
	skills        []string
	sort          string
	order         string
	anonymize     bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.search, "search", "s", "", "Case-insensitive search over name, skills and experience years")
	fl.Float64Var(&f.experienceMin, "experience-min", types.DefaultExperienceMin, "Minimum years of experience")
	fl.Float64Var(&f.experienceMax, "experience-max", types.DefaultExperienceMax, "Maximum years of experience")
	fl.Float64Var(&f.matchMin, "match-min", types.DefaultMatchScoreMin, "Minimum match score (0-1)")
	fl.StringSliceVar(&f.skills, "skill", nil, "Required skill, repeatable or comma-separated; any one must match exactly")
	fl.StringVar(&f.sort, "sort", string(types.SortByOverallScore), "Sort key: name, match_score, experience_years, overall_score")
	fl.StringVar(&f.order, "order", string(types.Descending), "Sort order: asc or desc")
	fl.BoolVar(&f.anonymize, "anonymize", false, "Display anonymized labels instead of names")
}

// criteria validates the flags the same way POST /search validates its body.
func (f *filterFlags) criteria() (types.QueryCriteria, error) {
	req := criteria.SearchRequest{
		Query:         f.search,
		ExperienceMin: &f.experienceMin,
		ExperienceMax: &f.experienceMax,
		MatchScoreMin: &f.matchMin,
		Skills:        f.skills,
		Sort:          f.sort,
		Order:         f.order,
		Anonymize:     f.anonymize,
	}
	if err := req.Validate(); err != nil {
		return types.QueryCriteria{}, err
	}
	return req.Criteria(), nil
}
