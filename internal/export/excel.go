package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/scorecard/internal/grading"
)

const (
	gradesSheet  = "Grades"
	summarySheet = "Summary"
)

// Percentage bands for result cell shading.
const (
	fillHeader = "4472C4"
	fillPass   = "C6EFCE"
	fillMid    = "FFEB9C"
	fillFail   = "FFC7CE"
)

func (e *Exporter) writeExcel(session *grading.Session, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gradesSheet); err != nil {
		return fmt.Errorf("create grades sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	names := criterionNames(session)
	if err := e.writeGrades(f, styles, session, names); err != nil {
		return err
	}
	if err := e.writeSummary(f, styles, session); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

type excelStyles struct {
	header   int
	bordered int
	centered int
	bold     int
	wrapped  int
	pass     int
	mid      int
	fail     int
	title    int
}

func newStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fillHeader}, Pattern: 1},
		Border:    border,
		Alignment: center,
	}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	if s.bordered, err = f.NewStyle(&excelize.Style{Border: border}); err != nil {
		return s, fmt.Errorf("create border style: %w", err)
	}
	if s.centered, err = f.NewStyle(&excelize.Style{Border: border, Alignment: center}); err != nil {
		return s, fmt.Errorf("create centered style: %w", err)
	}
	if s.bold, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true}, Border: border, Alignment: center,
	}); err != nil {
		return s, fmt.Errorf("create bold style: %w", err)
	}
	if s.wrapped, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	}); err != nil {
		return s, fmt.Errorf("create wrapped style: %w", err)
	}
	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12}, Border: border,
	}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}

	for _, band := range []struct {
		dst  *int
		fill string
	}{
		{&s.pass, fillPass},
		{&s.mid, fillMid},
		{&s.fail, fillFail},
	} {
		if *band.dst, err = f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{band.fill}, Pattern: 1},
			Border:    border,
			Alignment: center,
		}); err != nil {
			return s, fmt.Errorf("create band style: %w", err)
		}
	}

	return s, nil
}

func (e *Exporter) writeGrades(f *excelize.File, styles excelStyles, session *grading.Session, names []string) error {
	headers := append([]string{"#", "Student ID", "Student Name"}, names...)
	headers = append(headers, "Total", "Max Marks", "Percentage", "Feedback", "Detailed Feedback")

	for col, header := range headers {
		if err := setCell(f, gradesSheet, col+1, 1, header, styles.header); err != nil {
			return err
		}
	}

	type cell struct {
		value any
		style int
	}

	for i, result := range session.Results {
		row := i + 2

		cells := []cell{
			{i + 1, styles.bordered},
			{result.StudentID, styles.bordered},
			{result.StudentName, styles.bordered},
		}
		for _, name := range names {
			cells = append(cells, cell{elementMarks(result, name), styles.centered})
		}
		cells = append(cells,
			cell{result.TotalAwarded(), styles.bold},
			cell{result.TotalMax(), styles.bordered},
			cell{fmt.Sprintf("%.1f%%", result.Percentage()), bandStyle(styles, result.Percentage())},
			cell{result.OverallFeedback, styles.wrapped},
			cell{detailedFeedback(result), styles.wrapped},
		)

		for col, c := range cells {
			if err := setCell(f, gradesSheet, col+1, row, c.value, c.style); err != nil {
				return err
			}
		}
	}

	return sizeColumns(f, headers, names)
}

func bandStyle(styles excelStyles, percentage float64) int {
	switch {
	case percentage >= 70:
		return styles.pass
	case percentage >= 50:
		return styles.mid
	default:
		return styles.fail
	}
}

func detailedFeedback(result grading.Result) string {
	out := ""
	for _, e := range result.Elements {
		if e.Feedback == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += fmt.Sprintf("[%s]: %s", e.Criterion, e.Feedback)
	}
	return out
}

func sizeColumns(f *excelize.File, headers, names []string) error {
	widths := []struct {
		from, to int
		width    float64
	}{
		{1, 3, 15},
		{4, len(headers) - 2, 12},
		{len(headers) - 1, len(headers) - 1, 40},
		{len(headers), len(headers), 60},
	}

	for _, w := range widths {
		if w.to < w.from {
			continue
		}
		from, err := excelize.ColumnNumberToName(w.from)
		if err != nil {
			return fmt.Errorf("resolve column: %w", err)
		}
		to, err := excelize.ColumnNumberToName(w.to)
		if err != nil {
			return fmt.Errorf("resolve column: %w", err)
		}
		if err := f.SetColWidth(gradesSheet, from, to, w.width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	return nil
}

func (e *Exporter) writeSummary(f *excelize.File, styles excelStyles, session *grading.Session) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	percentages := make([]float64, 0, len(session.Results))
	for _, r := range session.Results {
		percentages = append(percentages, r.Percentage())
	}

	avg, lowest, highest := 0.0, percentages[0], percentages[0]
	for _, p := range percentages {
		avg += p
		lowest = min(lowest, p)
		highest = max(highest, p)
	}
	avg /= float64(len(percentages))

	dist := map[string]int{}
	for _, p := range percentages {
		switch {
		case p >= 80:
			dist["A (>=80%)"]++
		case p >= 70:
			dist["B (70-79%)"]++
		case p >= 60:
			dist["C (60-69%)"]++
		case p >= 50:
			dist["D (50-59%)"]++
		default:
			dist["F (<50%)"]++
		}
	}

	rubricName := "N/A"
	if session.Rubric != nil {
		rubricName = session.Rubric.Name
	}

	rows := []struct {
		label string
		value any
	}{
		{"Grading Summary", ""},
		{"", ""},
		{"Total Students", len(session.Results)},
		{"Average Score", fmt.Sprintf("%.1f%%", avg)},
		{"Highest Score", fmt.Sprintf("%.1f%%", highest)},
		{"Lowest Score", fmt.Sprintf("%.1f%%", lowest)},
		{"", ""},
		{"Grade Distribution", ""},
		{"A (>=80%)", dist["A (>=80%)"]},
		{"B (70-79%)", dist["B (70-79%)"]},
		{"C (60-69%)", dist["C (60-69%)"]},
		{"D (50-59%)", dist["D (50-59%)"]},
		{"F (<50%)", dist["F (<50%)"]},
		{"", ""},
		{"Export Date", time.Now().Format("2006-01-02 15:04")},
		{"Rubric", rubricName},
	}

	for i, r := range rows {
		style := styles.bordered
		if r.label == "Grading Summary" || r.label == "Grade Distribution" {
			style = styles.title
		}
		if err := setCell(f, summarySheet, 1, i+1, r.label, style); err != nil {
			return err
		}
		if err := setCell(f, summarySheet, 2, i+1, r.value, styles.bordered); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 15); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("resolve cell: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("style cell %s: %w", cell, err)
	}
	return nil
}
