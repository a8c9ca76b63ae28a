// Package rubrics models grading rubrics and loads them from uploaded
// files. A rubric is either structured (named criteria with mark
// allocations) or free text carried verbatim into the grading prompt.
package rubrics

import (
	"fmt"
	"strings"
)

// Rubric sources.
const (
	SourceStructured = "structured"
	SourceFreeText   = "free-text"
)

// DefaultTotalMarks applies when a rubric does not allocate marks.
const DefaultTotalMarks = 100.0

// Criterion is one assessable element of a structured rubric.
type Criterion struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	MaxMarks    float64 `json:"max_marks"`
	Weight      float64 `json:"weight"`
}

// Rubric describes how submissions are assessed.
type Rubric struct {
	Name       string      `json:"name"`
	Criteria   []Criterion `json:"criteria,omitempty"`
	TotalMarks float64     `json:"total_marks"`
	Source     string      `json:"source"`
	RawText    string      `json:"raw_text,omitempty"`
}

// New creates a structured rubric. Total marks are summed from the
// criteria; criteria without an explicit weight default to 1.
func New(name string, criteria []Criterion) *Rubric {
	total := 0.0
	for i := range criteria {
		if criteria[i].Weight == 0 {
			criteria[i].Weight = 1.0
		}
		total += criteria[i].MaxMarks
	}
	if total == 0 {
		total = DefaultTotalMarks
	}

	return &Rubric{
		Name:       name,
		Criteria:   criteria,
		TotalMarks: total,
		Source:     SourceStructured,
	}
}

// NewFreeText creates a rubric carrying unparsed text.
func NewFreeText(name, text string) *Rubric {
	return &Rubric{
		Name:       name,
		TotalMarks: DefaultTotalMarks,
		Source:     SourceFreeText,
		RawText:    text,
	}
}

// GradingPrompt renders the rubric as the assessment standard section of
// a grading prompt.
func (r *Rubric) GradingPrompt() string {
	if r == nil {
		return "No rubric provided. Use general academic standards."
	}

	if len(r.Criteria) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Rubric: %s (Total: %.0f marks)\n\n", r.Name, r.TotalMarks)
		for i, c := range r.Criteria {
			fmt.Fprintf(&b, "%d. %s (%.0f marks)", i+1, c.Name, c.MaxMarks)
			if c.Description != "" {
				fmt.Fprintf(&b, ": %s", c.Description)
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}

	if strings.TrimSpace(r.RawText) != "" {
		return r.RawText
	}

	return "No rubric provided. Use general academic standards."
}
