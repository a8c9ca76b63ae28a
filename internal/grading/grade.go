// Package grading orchestrates AI-assisted assessment of segmented
// student units against a rubric, tracks grading sessions, and exposes
// the results for review and manual adjustment.
package grading

import (
	"fmt"
	"time"
)

// ElementGrade is the assessment of one rubric criterion for one student.
type ElementGrade struct {
	Criterion      string  `json:"criterion"`
	MarksAwarded   float64 `json:"marks_awarded"`
	MaxMarks       float64 `json:"max_marks"`
	Feedback       string  `json:"feedback,omitempty"`
	ManuallyEdited bool    `json:"manually_edited,omitempty"`
}

// Percentage returns the element score as a percentage, zero when no
// marks were available.
func (e ElementGrade) Percentage() float64 {
	if e.MaxMarks <= 0 {
		return 0
	}
	return e.MarksAwarded / e.MaxMarks * 100
}

// Result is the full grading outcome for one student unit.
type Result struct {
	StudentID       string         `json:"student_id"`
	StudentName     string         `json:"student_name"`
	Elements        []ElementGrade `json:"elements"`
	OverallFeedback string         `json:"overall_feedback,omitempty"`
	Strengths       []string       `json:"strengths,omitempty"`
	Improvements    []string       `json:"areas_for_improvement,omitempty"`
	Provider        string         `json:"provider"`
	SuggestionOnly  bool           `json:"suggestion_only,omitempty"`
	ParseError      bool           `json:"parse_error,omitempty"`
	ManuallyEdited  bool           `json:"manually_edited,omitempty"`
	GradedAt        time.Time      `json:"graded_at"`
}

// TotalAwarded sums awarded marks across elements.
func (r *Result) TotalAwarded() float64 {
	total := 0.0
	for _, e := range r.Elements {
		total += e.MarksAwarded
	}
	return total
}

// TotalMax sums available marks across elements.
func (r *Result) TotalMax() float64 {
	total := 0.0
	for _, e := range r.Elements {
		total += e.MaxMarks
	}
	return total
}

// Percentage returns the overall score as a percentage, zero when no
// marks were available. Always recomputed from the elements so manual
// edits are reflected.
func (r *Result) Percentage() float64 {
	maxTotal := r.TotalMax()
	if maxTotal <= 0 {
		return 0
	}
	return r.TotalAwarded() / maxTotal * 100
}

// UpdateElement overwrites one element's marks and feedback, marking
// both the element and the result as manually edited. Other elements are
// untouched; totals follow from the elements on read.
func (r *Result) UpdateElement(criterion string, marks float64, feedback string) error {
	for i := range r.Elements {
		if r.Elements[i].Criterion != criterion {
			continue
		}
		r.Elements[i].MarksAwarded = marks
		if feedback != "" {
			r.Elements[i].Feedback = feedback
		}
		r.Elements[i].ManuallyEdited = true
		r.ManuallyEdited = true
		return nil
	}
	return fmt.Errorf("%w: %q", ErrElementNotFound, criterion)
}
