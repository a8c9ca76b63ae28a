package grading

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/scorecard/internal/providers"
	"github.com/JaimeStill/scorecard/internal/rubrics"
	"github.com/JaimeStill/scorecard/internal/segmentation"
	"github.com/JaimeStill/scorecard/pkg/formatting"
)

// Marking modes.
const (
	MarkAuto        = "auto"
	MarkSuggestions = "suggestions"
)

// Feedback styles.
const (
	FeedbackBrief    = "brief"
	FeedbackDetailed = "detailed"
)

// defaultPacing spaces generation calls to stay under provider rate
// limits.
const defaultPacing = 500 * time.Millisecond

// Options tune how the orchestrator grades.
type Options struct {
	MarkingMode   string
	FeedbackStyle string
	Pacing        time.Duration
}

func (o Options) pacing() time.Duration {
	if o.Pacing < 0 {
		return 0
	}
	if o.Pacing == 0 {
		return defaultPacing
	}
	return o.Pacing
}

// Progress reports grading advancement: units completed so far, total
// units, and a label for the unit in flight ("Complete" at the end).
type Progress func(current, total int, label string)

// Orchestrator grades segmented units against a rubric through a
// Generator.
type Orchestrator struct {
	gen    providers.Generator
	opts   Options
	logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator for the given generator.
func NewOrchestrator(gen providers.Generator, opts Options, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gen:    gen,
		opts:   opts,
		logger: logger.With("system", "grading"),
	}
}

// GradeAll grades every unit in order, producing exactly one Result per
// unit. A failure on one unit is recorded as an error-tagged result and
// grading continues; only context cancellation aborts the run. The
// progress callback, when set, fires before each unit and once more at
// the end with the "Complete" label.
func (o *Orchestrator) GradeAll(ctx context.Context, units []segmentation.Unit, rubric *rubrics.Rubric, progress Progress) ([]Result, error) {
	if len(units) == 0 {
		return nil, ErrNoUnits
	}

	total := len(units)
	results := make([]Result, 0, total)

	for i, unit := range units {
		if progress != nil {
			progress(i, total, unit.ID)
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := o.GradeUnit(ctx, unit, rubric)
		if err != nil {
			o.logger.ErrorContext(ctx, "grading failed for unit", "unit", unit.ID, "error", err)
			result = errorResult(unit, err)
		}
		results = append(results, result)

		if i < total-1 {
			if err := pace(ctx, o.opts.pacing()); err != nil {
				return results, err
			}
		}
	}

	if progress != nil {
		progress(total, total, "Complete")
	}

	o.logger.InfoContext(ctx, "graded all units", "units", total, "provider", o.gen.Name())
	return results, nil
}

// aiGrade mirrors the JSON structure the model is instructed to emit.
type aiGrade struct {
	StudentID       string   `json:"student_id"`
	StudentName     string   `json:"student_name"`
	Grades          []aiItem `json:"grades"`
	OverallFeedback string   `json:"overall_feedback"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"areas_for_improvement"`
}

type aiItem struct {
	Criterion string  `json:"criterion"`
	Marks     float64 `json:"marks"`
	MaxMarks  float64 `json:"max_marks"`
	Feedback  string  `json:"feedback"`
}

// GradeUnit grades a single unit. A response that cannot be parsed as
// JSON still yields a Result: the raw text becomes the overall feedback
// and the parse error flag is set, so nothing the model wrote is lost.
func (o *Orchestrator) GradeUnit(ctx context.Context, unit segmentation.Unit, rubric *rubrics.Rubric) (Result, error) {
	response, err := o.gen.Generate(ctx, o.systemPrompt(), o.gradingPrompt(unit.Content, rubric))
	if err != nil {
		return Result{}, err
	}

	result := Result{
		StudentID:      unit.ID,
		StudentName:    unit.Name,
		Provider:       o.gen.Name(),
		SuggestionOnly: o.opts.MarkingMode == MarkSuggestions,
		GradedAt:       time.Now(),
	}

	parsed, err := formatting.Parse[aiGrade](response)
	if err != nil {
		o.logger.WarnContext(ctx, "unparseable grading response", "unit", unit.ID, "error", err)
		result.OverallFeedback = response
		result.ParseError = true
		return result, nil
	}

	// The model's extracted identity wins only when it resolved one;
	// "Unknown" never overwrites what segmentation already found.
	if id := strings.TrimSpace(parsed.StudentID); id != "" && id != segmentation.PlaceholderIdentity {
		result.StudentID = id
	}
	if name := strings.TrimSpace(parsed.StudentName); name != "" && name != segmentation.PlaceholderIdentity {
		result.StudentName = name
	}

	result.OverallFeedback = parsed.OverallFeedback
	result.Strengths = parsed.Strengths
	result.Improvements = parsed.Improvements
	for _, g := range parsed.Grades {
		result.Elements = append(result.Elements, ElementGrade{
			Criterion:    g.Criterion,
			MarksAwarded: g.Marks,
			MaxMarks:     g.MaxMarks,
			Feedback:     g.Feedback,
		})
	}

	return result, nil
}

// aiRubric mirrors the JSON structure of the rubric parsing response.
type aiRubric struct {
	Name       string        `json:"name"`
	TotalMarks float64       `json:"total_marks"`
	Criteria   []aiCriterion `json:"criteria"`
}

type aiCriterion struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MaxMarks    float64 `json:"max_marks"`
}

// ParseRubric enriches a free-text rubric into structured criteria via
// the model. On any failure the original rubric is returned unchanged;
// structure is an enhancement, never a requirement.
func (o *Orchestrator) ParseRubric(ctx context.Context, rubric *rubrics.Rubric) (*rubrics.Rubric, error) {
	if strings.TrimSpace(rubric.RawText) == "" {
		return rubric, nil
	}

	response, err := o.gen.Generate(ctx, "", rubricParsePrompt+rubric.RawText)
	if err != nil {
		o.logger.WarnContext(ctx, "rubric parsing failed", "error", err)
		return rubric, nil
	}

	parsed, err := formatting.Parse[aiRubric](response)
	if err != nil || len(parsed.Criteria) == 0 {
		o.logger.WarnContext(ctx, "unparseable rubric response")
		return rubric, nil
	}

	criteria := make([]rubrics.Criterion, 0, len(parsed.Criteria))
	for _, c := range parsed.Criteria {
		criteria = append(criteria, rubrics.Criterion{
			Name:        c.Name,
			Description: c.Description,
			MaxMarks:    c.MaxMarks,
		})
	}

	structured := rubrics.New(rubric.Name, criteria)
	if parsed.Name != "" {
		structured.Name = parsed.Name
	}
	if parsed.TotalMarks > 0 {
		structured.TotalMarks = parsed.TotalMarks
	}
	structured.RawText = rubric.RawText

	return structured, nil
}

func errorResult(unit segmentation.Unit, err error) Result {
	return Result{
		StudentID:       unit.ID,
		StudentName:     unit.Name,
		OverallFeedback: fmt.Sprintf("Error during grading: %v", err),
		Provider:        "error",
		GradedAt:        time.Now(),
	}
}

func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *Orchestrator) systemPrompt() string {
	style := FeedbackDetailed
	if o.opts.FeedbackStyle == FeedbackBrief {
		style = FeedbackBrief
	}

	return fmt.Sprintf(`You are an expert academic grader. Your task is to evaluate student assignments based on a provided rubric.

Instructions:
1. Carefully read the student's work
2. Evaluate against each rubric criterion
3. Provide %s feedback for each criterion
4. Be fair, constructive, and educational in your feedback
5. Focus on specific examples from the student's work

Output Format:
You MUST respond in valid JSON format with this structure:
{
    "student_id": "extracted or inferred student ID",
    "student_name": "extracted or inferred student name",
    "grades": [
        {
            "criterion": "criterion name",
            "marks": <number>,
            "max_marks": <number>,
            "feedback": "specific feedback for this criterion"
        }
    ],
    "overall_feedback": "summary feedback",
    "strengths": ["strength 1", "strength 2"],
    "areas_for_improvement": ["area 1", "area 2"]
}

Important:
- Extract student ID/name from the document if present (look for headers, title pages, etc.)
- If not found, use "Unknown" for ID and infer from content if possible
- Marks must be numbers within the max_marks limit
- Provide constructive, educational feedback
- Be consistent in grading standards`, style)
}

func (o *Orchestrator) gradingPrompt(content string, rubric *rubrics.Rubric) string {
	mode := "Calculate exact marks"
	if o.opts.MarkingMode == MarkSuggestions {
		mode = "Suggest marks (teacher will finalize)"
	}

	return fmt.Sprintf(`Grade the following student assignment based on the rubric.

Mode: %s

=== RUBRIC ===
%s

=== STUDENT WORK ===
%s

=== END OF STUDENT WORK ===

Please grade this work and respond in the JSON format specified.`, mode, rubric.GradingPrompt(), content)
}

const rubricParsePrompt = `Parse the following rubric into structured criteria.
For each criterion, extract:
- Name
- Description
- Maximum marks

Respond in JSON format:
{
    "name": "rubric name",
    "total_marks": <number>,
    "criteria": [
        {"name": "criterion name", "description": "what it evaluates", "max_marks": <number>}
    ]
}

Rubric:
`
