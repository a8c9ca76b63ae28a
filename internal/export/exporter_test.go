package export_test

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/scorecard/internal/export"
	"github.com/JaimeStill/scorecard/internal/grading"
	"github.com/JaimeStill/scorecard/internal/rubrics"
)

func newExporter() *export.Exporter {
	return export.NewExporter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleSession() *grading.Session {
	session := grading.NewSession()
	session.Status = grading.StatusCompleted
	session.Rubric = rubrics.New("Essay", []rubrics.Criterion{
		{Name: "Clarity", MaxMarks: 20},
		{Name: "Evidence", MaxMarks: 30},
	})
	session.Results = []grading.Result{
		{
			StudentID:   "S-1",
			StudentName: "Ana Gross",
			Elements: []grading.ElementGrade{
				{Criterion: "Clarity", MarksAwarded: 18, MaxMarks: 20, Feedback: "Sharp."},
				{Criterion: "Evidence", MarksAwarded: 24, MaxMarks: 30},
			},
			OverallFeedback: "Strong work.",
			Provider:        "fake/model",
		},
		{
			StudentID:   "S-2",
			StudentName: "Ben Okafor",
			Elements: []grading.ElementGrade{
				{Criterion: "Clarity", MarksAwarded: 10, MaxMarks: 20},
				{Criterion: "Evidence", MarksAwarded: 9, MaxMarks: 30},
			},
			OverallFeedback: "Needs more sources.",
			Provider:        "fake/model",
		},
	}
	return session
}

func TestExportUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	_, err := newExporter().Export(sampleSession(), "parquet", path)
	if !errors.Is(err, export.ErrUnknownFormat) {
		t.Fatalf("error: got %v, want ErrUnknownFormat", err)
	}
}

func TestExportNoResults(t *testing.T) {
	session := grading.NewSession()
	path := filepath.Join(t.TempDir(), "out.csv")

	_, err := newExporter().Export(session, export.FormatCSV, path)
	if !errors.Is(err, export.ErrNoResults) {
		t.Fatalf("error: got %v, want ErrNoResults", err)
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	if _, err := newExporter().Export(sampleSession(), export.FormatCSV, path); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}

	header := rows[0]
	want := []string{"Student ID", "Student Name", "Clarity", "Evidence", "Total", "Max Marks", "Percentage", "Feedback"}
	if len(header) != len(want) {
		t.Fatalf("header: got %v", header)
	}
	for i, h := range want {
		if header[i] != h {
			t.Errorf("header %d: got %s, want %s", i, header[i], h)
		}
	}

	first := rows[1]
	if first[0] != "S-1" || first[2] != "18" || first[4] != "42" || first[6] != "84.0%" {
		t.Errorf("first row: got %v", first)
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	if _, err := newExporter().Export(sampleSession(), export.FormatJSON, path); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}

	var parsed struct {
		SessionID string           `json:"session_id"`
		Results   []grading.Result `json:"results"`
		Summary   struct {
			TotalStudents     int     `json:"total_students"`
			AveragePercentage float64 `json:"average_percentage"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(parsed.Results) != 2 {
		t.Errorf("results: got %d, want 2", len(parsed.Results))
	}
	if parsed.Summary.TotalStudents != 2 {
		t.Errorf("total students: got %d", parsed.Summary.TotalStudents)
	}
	if parsed.Summary.AveragePercentage < 60 || parsed.Summary.AveragePercentage > 62 {
		t.Errorf("average: got %g", parsed.Summary.AveragePercentage)
	}
}

func TestExportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	if _, err := newExporter().Export(sampleSession(), export.FormatExcel, path); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Grades" || sheets[1] != "Summary" {
		t.Fatalf("sheets: got %v", sheets)
	}

	id, err := f.GetCellValue("Grades", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if id != "S-1" {
		t.Errorf("B2: got %s, want S-1", id)
	}

	pct, err := f.GetCellValue("Grades", "H3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if pct != "38.0%" {
		t.Errorf("H3: got %s, want 38.0%%", pct)
	}

	total, err := f.GetCellValue("Summary", "B3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if total != "2" {
		t.Errorf("summary total students: got %s, want 2", total)
	}
}

func TestExt(t *testing.T) {
	tests := []struct{ format, want string }{
		{export.FormatExcel, "xlsx"},
		{export.FormatCSV, "csv"},
		{export.FormatJSON, "json"},
	}
	for _, tt := range tests {
		if got := export.Ext(tt.format); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.format, got, tt.want)
		}
	}
}
