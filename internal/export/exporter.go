// Package export renders completed grading sessions as spreadsheet,
// CSV, or JSON files for distribution outside the service.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/scorecard/internal/grading"
)

// Supported export formats.
const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Domain errors for export operations.
var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNoResults     = errors.New("session has no results to export")
)

// MapHTTPStatus maps export domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownFormat) || errors.Is(err, ErrNoResults) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Exporter writes grading sessions to files.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logger.With("system", "export")}
}

// Export writes the session in the requested format and returns the
// output path.
func (e *Exporter) Export(session *grading.Session, format, path string) (string, error) {
	if len(session.Results) == 0 {
		return "", ErrNoResults
	}

	var err error
	switch format {
	case FormatExcel:
		err = e.writeExcel(session, path)
	case FormatCSV:
		err = e.writeCSV(session, path)
	case FormatJSON:
		err = e.writeJSON(session, path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("exported session", "session", session.ID, "format", format, "path", path)
	return path, nil
}

// Ext returns the file extension for a format.
func Ext(format string) string {
	switch format {
	case FormatExcel:
		return "xlsx"
	case FormatCSV:
		return "csv"
	default:
		return "json"
	}
}

// criterionNames derives the column set from the first result's
// elements, falling back to the rubric's criteria.
func criterionNames(session *grading.Session) []string {
	if len(session.Results) > 0 && len(session.Results[0].Elements) > 0 {
		names := make([]string, 0, len(session.Results[0].Elements))
		for _, e := range session.Results[0].Elements {
			names = append(names, e.Criterion)
		}
		return names
	}
	if session.Rubric != nil {
		names := make([]string, 0, len(session.Rubric.Criteria))
		for _, c := range session.Rubric.Criteria {
			names = append(names, c.Name)
		}
		return names
	}
	return nil
}

func elementMarks(result grading.Result, criterion string) float64 {
	for _, e := range result.Elements {
		if e.Criterion == criterion {
			return e.MarksAwarded
		}
	}
	return 0
}

func (e *Exporter) writeCSV(session *grading.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := criterionNames(session)

	header := append([]string{"Student ID", "Student Name"}, names...)
	header = append(header, "Total", "Max Marks", "Percentage", "Feedback")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, result := range session.Results {
		row := []string{result.StudentID, result.StudentName}
		for _, name := range names {
			row = append(row, formatMarks(elementMarks(result, name)))
		}
		row = append(row,
			formatMarks(result.TotalAwarded()),
			formatMarks(result.TotalMax()),
			fmt.Sprintf("%.1f%%", result.Percentage()),
			result.OverallFeedback,
		)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func formatMarks(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// jsonExport is the JSON export envelope.
type jsonExport struct {
	SessionID  string           `json:"session_id"`
	ExportedAt time.Time        `json:"exported_at"`
	Rubric     any              `json:"rubric"`
	Results    []grading.Result `json:"results"`
	Summary    jsonSummary      `json:"summary"`
}

type jsonSummary struct {
	TotalStudents     int     `json:"total_students"`
	AveragePercentage float64 `json:"average_percentage"`
}

func (e *Exporter) writeJSON(session *grading.Session, path string) error {
	avg := 0.0
	for _, r := range session.Results {
		avg += r.Percentage()
	}
	avg /= float64(len(session.Results))

	payload := jsonExport{
		SessionID:  session.ID,
		ExportedAt: time.Now(),
		Results:    session.Results,
		Summary: jsonSummary{
			TotalStudents:     len(session.Results),
			AveragePercentage: avg,
		},
	}
	if session.Rubric != nil {
		payload.Rubric = session.Rubric
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}
