package types

import "strings"

// SortKey selects the attribute a result set is ordered by.
type SortKey string

// Supported sort keys
const (
	SortByName            SortKey = "name"
	SortByMatchScore      SortKey = "match_score"
	SortByExperienceYears SortKey = "experience_years"
	SortByOverallScore    SortKey = "overall_score"
)

// SortDirection is ascending or descending.
type SortDirection string

// Supported sort directions
const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Filter defaults shown by the dashboard filter panel.
const (
	DefaultExperienceMin = 0.0
	DefaultExperienceMax = 20.0
	DefaultMatchScoreMin = 0.0
)

// QueryCriteria is the combined search/filter/sort request accepted by the pipeline.
// Start from DefaultCriteria: the zero value has ExperienceMax 0 and keeps only candidates
// without experience.
type QueryCriteria struct {
	SearchTerm     string        `json:"search_term,omitempty"`
	ExperienceMin  float64       `json:"experience_min"`
	ExperienceMax  float64       `json:"experience_max"`
	MatchScoreMin  float64       `json:"match_score_min"`
	RequiredSkills []string      `json:"required_skills,omitempty"`
	SortKey        SortKey       `json:"sort_key"`
	SortDirection  SortDirection `json:"sort_direction"`
	// Anonymize replaces display names with anonymized labels.
	Anonymize bool `json:"anonymize,omitempty"`
}

// DefaultCriteria returns criteria that match every well-formed record, sorted by overall score descending.
func DefaultCriteria() QueryCriteria {
	return QueryCriteria{
		ExperienceMin: DefaultExperienceMin,
		ExperienceMax: DefaultExperienceMax,
		MatchScoreMin: DefaultMatchScoreMin,
		SortKey:       SortByOverallScore,
		SortDirection: Descending,
	}
}

// ParseSortKey maps user input to a SortKey. Both snake_case and camelCase spellings are accepted.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return SortByName, true
	case "match_score", "matchscore":
		return SortByMatchScore, true
	case "experience_years", "experienceyears", "experience":
		return SortByExperienceYears, true
	case "overall_score", "overallscore":
		return SortByOverallScore, true
	}
	return "", false
}

// ParseSortDirection maps user input to a SortDirection.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	}
	return "", false
}
