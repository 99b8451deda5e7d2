// Package types provides type definitions for structured data used throughout the candidate-ranker system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CandidateRecord is one parsed resume as delivered by the parsing service.
// Missing JSON fields decode to their zero values, which are the documented defaults.
type CandidateRecord struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Education       string   `json:"education,omitempty"`
	ResumeText      string   `json:"resume_text,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	ExperienceYears float64  `json:"experience_years"`
	MatchScore      float64  `json:"match_score"`
}

// EnrichedCandidate is a CandidateRecord plus the fields derived on every query.
type EnrichedCandidate struct {
	CandidateRecord

	OverallScore        int    `json:"overall_score"`        // 15-95
	AnonymizedLabel     string `json:"anonymized_id"`        // 6-character display code
	FormattedExperience string `json:"formatted_experience"` // "Entry Level", "1 Year", "N Years"
	ScoreLabel          string `json:"score_label"`          // "Excellent", "Good", "Needs Improvement"
	DisplayName         string `json:"display_name"`         // name, "Anonymous" or the label when masked
}

// Masked returns a copy of c without the fields that identify the candidate:
// name, email, phone and resume text. Anonymized responses carry only the label.
func (c EnrichedCandidate) Masked() EnrichedCandidate {
	c.Name = ""
	c.Email = ""
	c.Phone = ""
	c.ResumeText = ""
	return c
}

// Summary holds the dashboard counters for a result set.
type Summary struct {
	Total          int      `json:"total"`
	HighScores     int      `json:"high_scores"`     // overall_score >= 70
	Experienced    int      `json:"experienced"`     // experience_years >= 5
	TopMatches     int      `json:"top_matches"`     // match_score >= 0.8
	DistinctSkills []string `json:"distinct_skills"` // from the unfiltered input
}

// ResultSet is the ordered, filtered view returned by a query.
type ResultSet struct {
	Candidates []EnrichedCandidate `json:"candidates"`
	Summary    Summary             `json:"summary"`
}

// Masked returns a copy of rs with every candidate Masked. rs is left untouched.
func (rs ResultSet) Masked() ResultSet {
	out := make([]EnrichedCandidate, len(rs.Candidates))
	for i := range rs.Candidates {
		out[i] = rs.Candidates[i].Masked()
	}
	rs.Candidates = out
	return rs
}
