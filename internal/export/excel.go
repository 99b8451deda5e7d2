package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/candidate-ranker/internal/ranking"
	"github.com/jonathan/candidate-ranker/internal/types"
)

// Sheet names
const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Ranked Candidates"
)

// ContentTypeXLSX is the MIME type of an Excel workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// tierFills are the row fill colors per score tier.
var tierFills = map[string]string{
	"excellent": "C6EFCE",
	"good":      "FFEB9C",
	"poor":      "FFC7CE",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

var candidateHeaders = []string{
	"Rank", "ID", "Label", "Name", "Overall Score", "Rating",
	"Match Score", "Experience", "Skills", "Email", "Phone", "Education",
}

// Workbook builds an Excel workbook with a summary sheet and a ranked candidates sheet.
// The caller must Close the returned file.
func Workbook(rs types.ResultSet, a types.Analytics, opts Options, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeSummarySheet(f, rs.Summary, a, now); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidatesSheet(f, Rows(rs.Candidates, opts)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}

	return f, nil
}

// WriteExcel writes the workbook for rs to w.
func WriteExcel(w io.Writer, rs types.ResultSet, a types.Analytics, opts Options, now time.Time) error {
	f, err := Workbook(rs, a, opts, now)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveExcel writes the workbook for rs to path, adding an .xlsx extension when missing.
// It returns the path written.
func SaveExcel(path string, rs types.ResultSet, a types.Analytics, opts Options, now time.Time) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	var buf bytes.Buffer
	if err := WriteExcel(&buf, rs, a, opts, now); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return path, nil
}

// summaryWriter appends label/value lines to the summary sheet, keeping the first error.
type summaryWriter struct {
	f           *excelize.File
	row         int
	headerStyle int
	labelStyle  int
	err         error
}

func (w *summaryWriter) section(title string) {
	if w.err != nil {
		return
	}
	a := fmt.Sprintf("A%d", w.row)
	b := fmt.Sprintf("B%d", w.row)
	if w.err = w.f.SetCellValue(SummarySheet, a, title); w.err != nil {
		return
	}
	if w.err = w.f.SetCellStyle(SummarySheet, a, b, w.headerStyle); w.err != nil {
		return
	}
	w.err = w.f.MergeCell(SummarySheet, a, b)
	w.row++
}

func (w *summaryWriter) line(label string, value any) {
	if w.err != nil {
		return
	}
	a := fmt.Sprintf("A%d", w.row)
	if w.err = w.f.SetCellValue(SummarySheet, a, label); w.err != nil {
		return
	}
	if w.err = w.f.SetCellStyle(SummarySheet, a, a, w.labelStyle); w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", w.row), value)
	w.row++
}

func (w *summaryWriter) gap() {
	w.row++
}

func writeSummarySheet(f *excelize.File, s types.Summary, a types.Analytics, now time.Time) error {
	if err := f.SetColWidth(SummarySheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 24); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	w := &summaryWriter{f: f, row: 1, headerStyle: headerStyle, labelStyle: labelStyle}

	w.section("Candidate Ranking Report")
	w.line("Generated:", now.Format("2006-01-02 15:04:05"))
	w.line("Total Candidates:", s.Total)
	w.line("High Scores (70+):", s.HighScores)
	w.line("Experienced (5+ years):", s.Experienced)
	w.line("Top Matches (80%+):", s.TopMatches)
	w.line("Average Match Score:", fmt.Sprintf("%.1f%%", a.AverageMatchScore*100))
	w.line("Average Experience:", fmt.Sprintf("%.1f years", a.AverageExperience))
	w.line("Pass Rate:", fmt.Sprintf("%.1f%%", a.PassRate*100))
	w.gap()

	w.section("Experience Distribution")
	for _, b := range a.ExperienceDistribution {
		w.line(b.Label, b.Count)
	}
	w.gap()

	w.section("Match Score Distribution")
	for _, b := range a.MatchScoreDistribution {
		w.line(b.Label, b.Count)
	}

	if len(a.TopSkills) > 0 {
		w.gap()
		w.section("Top Skills")
		for _, sk := range a.TopSkills {
			w.line(sk.Skill, sk.Count)
		}
	}

	return w.err
}

func writeCandidatesSheet(f *excelize.File, rows []Row) error {
	sheet := CandidatesSheet
	widths := []float64{8, 10, 10, 25, 14, 18, 12, 14, 40, 28, 16, 30}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	tierStyles := make(map[string]int, len(tierFills))
	for tier, color := range tierFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		tierStyles[tier] = style
	}

	for i, h := range candidateHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(candidateHeaders))
	if err != nil {
		return err
	}

	for i, r := range rows {
		rowNum := i + 2
		values := []any{
			r.Rank,
			r.ID,
			r.AnonymizedLabel,
			r.Name,
			r.OverallScore,
			r.ScoreLabel,
			fmt.Sprintf("%.0f%%", r.MatchScore*100),
			r.FormattedExperience,
			strings.Join(r.Skills, ", "),
			r.Email,
			r.Phone,
			r.Education,
		}
		start, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		end := fmt.Sprintf("%s%d", lastCol, rowNum)
		if err := f.SetCellStyle(sheet, start, end, tierStyles[ranking.ScoreTier(r.OverallScore)]); err != nil {
			return err
		}
	}

	if len(rows) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1)
		if err := f.AutoFilter(sheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
