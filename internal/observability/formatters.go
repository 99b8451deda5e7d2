// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/candidate-ranker/internal/schemas"
	"github.com/jonathan/candidate-ranker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintCriteria outputs the active search, filter and sort settings.
func (p *Printer) PrintCriteria(c types.QueryCriteria) {
	var sb strings.Builder

	search := c.SearchTerm
	if search == "" {
		search = "(none)"
	}
	sb.WriteString(fmt.Sprintf("Search:      %s\n", search))
	sb.WriteString(fmt.Sprintf("Experience:  %g - %g years\n", c.ExperienceMin, c.ExperienceMax))
	sb.WriteString(fmt.Sprintf("Match Score: >= %.0f%%\n", c.MatchScoreMin*100))
	if len(c.RequiredSkills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:      %s\n", strings.Join(c.RequiredSkills, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Sort:        %s %s", c.SortKey, c.SortDirection))
	if c.Anonymize {
		sb.WriteString("\nAnonymized:  yes")
	}

	p.printBox("QUERY CRITERIA", sb.String())
}

// PrintResultSet outputs the top ranked candidates with their scores.
func (p *Printer) PrintResultSet(rs types.ResultSet) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Showing %d of %d candidates\n", len(rs.Candidates), rs.Summary.Total))

	if len(rs.Candidates) == 0 {
		sb.WriteString("\nNo candidates match the current filters.")
		p.printBox("RANKED CANDIDATES", sb.String())
		return
	}
	sb.WriteString("\n")

	count := min(len(rs.Candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := rs.Candidates[i]
		sb.WriteString(fmt.Sprintf("#%d  %s [%s]\n", i+1, c.DisplayName, c.AnonymizedLabel))
		sb.WriteString(fmt.Sprintf("    Score: %d (%s)  Match: %.0f%%\n", c.OverallScore, c.ScoreLabel, c.MatchScore*100))
		sb.WriteString(fmt.Sprintf("    Experience: %s\n", c.FormattedExperience))
		if len(c.Skills) > 0 {
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", truncate(strings.Join(c.Skills, ", "), 40)))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(rs.Candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(rs.Candidates)-maxItemsToShow))
	}

	p.printBox("RANKED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs the dashboard counters.
func (p *Printer) PrintSummary(s types.Summary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:        %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("High Scores:  %d\n", s.HighScores))
	sb.WriteString(fmt.Sprintf("Experienced:  %d\n", s.Experienced))
	sb.WriteString(fmt.Sprintf("Top Matches:  %d\n", s.TopMatches))
	sb.WriteString(fmt.Sprintf("Skills:       %d distinct", len(s.DistinctSkills)))

	p.printBox("SUMMARY", sb.String())
}

// PrintAnalytics outputs averages, distributions and the most common skills.
func (p *Printer) PrintAnalytics(a types.Analytics) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates:     %d\n", a.Total))
	sb.WriteString(fmt.Sprintf("Avg Match:      %.1f%%\n", a.AverageMatchScore*100))
	sb.WriteString(fmt.Sprintf("Avg Experience: %.1f years\n", a.AverageExperience))
	sb.WriteString(fmt.Sprintf("Pass Rate:      %.1f%%\n", a.PassRate*100))
	sb.WriteString(fmt.Sprintf("Correlation:    %.2f\n", a.Correlation))
	sb.WriteString("\n")

	sb.WriteString("Experience:\n")
	for _, b := range a.ExperienceDistribution {
		sb.WriteString(fmt.Sprintf("  %-26s %d\n", b.Label, b.Count))
	}
	sb.WriteString("\nMatch Score:\n")
	for _, b := range a.MatchScoreDistribution {
		sb.WriteString(fmt.Sprintf("  %-26s %d\n", b.Label, b.Count))
	}

	if len(a.TopSkills) > 0 {
		sb.WriteString("\nTop Skills:\n")
		count := min(len(a.TopSkills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s (%d)\n", a.TopSkills[i].Skill, a.TopSkills[i].Count))
		}
		if len(a.TopSkills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(a.TopSkills)-maxItemsToShow))
		}
	}

	p.printBox("ANALYTICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSchemaWarning outputs a non-fatal input validation problem.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSchemaWarning(path string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(p.out, "⚠ %s does not match the candidate schema:\n", path)
	var verr *schemas.ValidationError
	if errors.As(err, &verr) {
		if n := len(verr.InvalidRecords()); n > 0 {
			fmt.Fprintf(p.out, "  %d invalid record(s); they are still ranked with defaults\n", n)
		}
	}
	for _, line := range strings.Split(strings.TrimSpace(err.Error()), "\n") {
		fmt.Fprintf(p.out, "  %s\n", strings.TrimSpace(line))
	}
}
