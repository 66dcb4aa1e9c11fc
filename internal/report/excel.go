package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	rankedSheet  = "Ranked Candidates"
	detailsSheet = "Detailed Analysis"
)

var rankedHeaders = []string{
	"Rank", "Candidate", "File", "Email", "Score", "Fit",
	"Skill", "Experience", "Role", "Years", "Matched Skills", "Missing Skills",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// fitColors maps fit labels to row fill colors.
var fitColors = map[string]string{
	"Strong":        "C6EFCE",
	"Partial":       "FFEB9C",
	"Low relevance": "FFC7CE",
}

// WriteXLSX saves the report as a workbook with summary, ranking and detail sheets.
// The .xlsx extension is added when missing. It returns the final path.
func (r *Report) WriteXLSX(path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", err
	}
	for _, name := range []string{rankedSheet, detailsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return "", err
	}

	if err := r.writeSummarySheet(f, headerStyle); err != nil {
		return "", fmt.Errorf("summary sheet: %w", err)
	}
	if err := r.writeRankedSheet(f, headerStyle); err != nil {
		return "", fmt.Errorf("ranked sheet: %w", err)
	}
	if err := r.writeDetailsSheet(f, headerStyle); err != nil {
		return "", fmt.Errorf("details sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func (r *Report) writeSummarySheet(f *excelize.File, headerStyle int) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 25); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 80); err != nil {
		return err
	}

	rows := [][]any{
		{"Resume Ranking Report", ""},
		{"Job ID", r.Job.ID},
		{"Job Description", r.Job.Description},
		{"Generated", r.Created.Format("2006-01-02 15:04:05")},
		{"Total Resumes", r.Counts.Total},
		{"Completed", r.Counts.Completed},
		{"Failed", r.Counts.Failed},
	}
	for i, row := range rows {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	return f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
}

func (r *Report) writeRankedSheet(f *excelize.File, headerStyle int) error {
	if err := f.SetColWidth(rankedSheet, "B", "D", 25); err != nil {
		return err
	}
	if err := f.SetColWidth(rankedSheet, "K", "L", 40); err != nil {
		return err
	}

	header := make([]any, len(rankedHeaders))
	for i, h := range rankedHeaders {
		header[i] = h
	}
	if err := setRow(f, rankedSheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(rankedHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(rankedSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	styles := make(map[string]int, len(fitColors))
	for fit, color := range fitColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		styles[fit] = id
	}

	for i, e := range r.Ranked {
		row := i + 2
		values := []any{
			e.Rank, e.Name, e.FileName, e.Email, e.Score, e.Fit,
			e.Breakdown.SkillScore, e.Breakdown.ExperienceScore, e.Breakdown.RoleScore, e.Experience,
			strings.Join(e.MatchedSkills, ", "), strings.Join(e.MissingSkills, ", "),
		}
		if err := setRow(f, rankedSheet, row, values); err != nil {
			return err
		}

		first, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(values), row)
		if err := f.SetCellStyle(rankedSheet, first, end, styles[e.Fit]); err != nil {
			return err
		}
	}

	return f.SetPanes(rankedSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (r *Report) writeDetailsSheet(f *excelize.File, headerStyle int) error {
	if err := f.SetColWidth(detailsSheet, "B", "B", 25); err != nil {
		return err
	}
	if err := f.SetColWidth(detailsSheet, "C", "E", 60); err != nil {
		return err
	}

	if err := setRow(f, detailsSheet, 1, []any{"Rank", "Candidate", "Strengths", "Gaps", "Summary"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(detailsSheet, "A1", "E1", headerStyle); err != nil {
		return err
	}

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	for i, e := range r.Ranked {
		row := i + 2
		values := []any{
			e.Rank, e.Name,
			strings.Join(e.Strengths, "\n"), strings.Join(e.Gaps, "\n"), e.Summary,
		}
		if err := setRow(f, detailsSheet, row, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(detailsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), wrapStyle); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
