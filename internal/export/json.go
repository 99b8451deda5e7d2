// Package export writes ranked result sets as JSON documents and Excel workbooks.
package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// Options controls what an export contains.
type Options struct {
	IncludeResumeText bool
	// Anonymize drops name, email, phone and resume text, leaving the anonymized label.
	Anonymize bool
}

// Row is one exported candidate.
type Row struct {
	Rank                int      `json:"rank"`
	ID                  int64    `json:"id"`
	AnonymizedLabel     string   `json:"anonymized_id"`
	Name                string   `json:"name,omitempty"`
	Email               string   `json:"email,omitempty"`
	Phone               string   `json:"phone,omitempty"`
	Skills              []string `json:"skills"`
	ExperienceYears     float64  `json:"experience_years"`
	FormattedExperience string   `json:"formatted_experience"`
	Education           string   `json:"education,omitempty"`
	MatchScore          float64  `json:"match_score"`
	OverallScore        int      `json:"overall_score"`
	ScoreLabel          string   `json:"score_label"`
	ResumeText          string   `json:"resume_text,omitempty"`
}

// Document is the JSON export envelope.
type Document struct {
	Format     string        `json:"format"`
	Count      int           `json:"count"`
	ExportedAt time.Time     `json:"exported_at"`
	Summary    types.Summary `json:"summary"`
	Data       []Row         `json:"data"`
}

// Rows converts ranked candidates to export rows, numbering ranks from 1.
func Rows(candidates []types.EnrichedCandidate, opts Options) []Row {
	rows := make([]Row, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		skills := c.Skills
		if skills == nil {
			skills = []string{}
		}
		row := Row{
			Rank:                i + 1,
			ID:                  c.ID,
			AnonymizedLabel:     c.AnonymizedLabel,
			Skills:              skills,
			ExperienceYears:     c.ExperienceYears,
			FormattedExperience: c.FormattedExperience,
			Education:           c.Education,
			MatchScore:          c.MatchScore,
			OverallScore:        c.OverallScore,
			ScoreLabel:          c.ScoreLabel,
		}
		if !opts.Anonymize {
			row.Name = c.Name
			row.Email = c.Email
			row.Phone = c.Phone
			if opts.IncludeResumeText {
				row.ResumeText = c.ResumeText
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// NewDocument builds the JSON export of rs.
func NewDocument(rs types.ResultSet, opts Options, now time.Time) Document {
	rows := Rows(rs.Candidates, opts)
	return Document{
		Format:     "json",
		Count:      len(rows),
		ExportedAt: now.UTC(),
		Summary:    rs.Summary,
		Data:       rows,
	}
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
