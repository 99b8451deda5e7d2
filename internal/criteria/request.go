package criteria

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/candidate-ranker/internal/types"
)

var validate = validator.New()

// SearchRequest is the JSON body of a search. Absent numeric fields keep their defaults.
// An inverted experience range is accepted and simply matches nothing.
type SearchRequest struct {
	Query         string   `json:"query" validate:"max=200"`
	ExperienceMin *float64 `json:"experience_min,omitempty" validate:"omitempty,gte=0"`
	ExperienceMax *float64 `json:"experience_max,omitempty" validate:"omitempty,gte=0"`
	MatchScoreMin *float64 `json:"match_score_min,omitempty" validate:"omitempty,gte=0,lte=1"`
	Skills        []string `json:"skills,omitempty" validate:"max=100,dive,required,max=100"`
	Sort          string   `json:"sort,omitempty" validate:"omitempty,oneof=name match_score matchScore experience_years experienceYears experience overall_score overallScore"`
	Order         string   `json:"order,omitempty" validate:"omitempty,oneof=asc desc ascending descending"`
	Anonymize     bool     `json:"anonymize,omitempty"`
	Limit         int      `json:"limit,omitempty" validate:"gte=0,lte=1000"`
	Offset        int      `json:"offset,omitempty" validate:"gte=0"`
}

// RequestError reports the first invalid field of a SearchRequest.
type RequestError struct {
	Field string
	Tag   string
	Cause error
}

func (e *RequestError) Error() string {
	if e.Field == "" {
		return "validation error: invalid request"
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Tag)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Validate checks the request against its field constraints.
func (r *SearchRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &RequestError{Field: verrs[0].Field(), Tag: verrs[0].Tag(), Cause: err}
	}
	return &RequestError{Cause: err}
}

// Criteria converts the request to query criteria, applying defaults for absent fields.
func (r *SearchRequest) Criteria() types.QueryCriteria {
	c := types.DefaultCriteria()

	c.SearchTerm = strings.TrimSpace(r.Query)
	if r.ExperienceMin != nil {
		c.ExperienceMin = *r.ExperienceMin
	}
	if r.ExperienceMax != nil {
		c.ExperienceMax = *r.ExperienceMax
	}
	if r.MatchScoreMin != nil {
		c.MatchScoreMin = *r.MatchScoreMin
	}
	c.RequiredSkills = SplitSkills(r.Skills)
	c.Anonymize = r.Anonymize

	if key, ok := types.ParseSortKey(r.Sort); ok {
		c.SortKey = key
	}
	if dir, ok := types.ParseSortDirection(r.Order); ok {
		c.SortDirection = dir
	}

	return c
}
