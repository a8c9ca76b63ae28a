package rubrics_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/scorecard/internal/rubrics"
)

func TestNewSumsTotalMarks(t *testing.T) {
	rubric := rubrics.New("Essay", []rubrics.Criterion{
		{Name: "Clarity", MaxMarks: 20},
		{Name: "Evidence", MaxMarks: 30},
	})

	if rubric.TotalMarks != 50 {
		t.Errorf("total: got %g, want 50", rubric.TotalMarks)
	}
	if rubric.Source != rubrics.SourceStructured {
		t.Errorf("source: got %s", rubric.Source)
	}
	for _, c := range rubric.Criteria {
		if c.Weight != 1.0 {
			t.Errorf("criterion %s weight: got %g, want 1", c.Name, c.Weight)
		}
	}
}

func TestNewDefaultsTotalWhenUnallocated(t *testing.T) {
	rubric := rubrics.New("Sparse", []rubrics.Criterion{{Name: "Effort"}})
	if rubric.TotalMarks != rubrics.DefaultTotalMarks {
		t.Errorf("total: got %g, want %g", rubric.TotalMarks, rubrics.DefaultTotalMarks)
	}
}

func TestGradingPrompt(t *testing.T) {
	tests := []struct {
		name   string
		rubric *rubrics.Rubric
		want   []string
	}{
		{
			name: "structured criteria numbered",
			rubric: rubrics.New("Essay", []rubrics.Criterion{
				{Name: "Clarity", Description: "clear writing", MaxMarks: 20},
				{Name: "Evidence", MaxMarks: 30},
			}),
			want: []string{
				"Rubric: Essay (Total: 50 marks)",
				"1. Clarity (20 marks): clear writing",
				"2. Evidence (30 marks)",
			},
		},
		{
			name:   "free text passes through",
			rubric: rubrics.NewFreeText("Draft", "Grade generously on originality."),
			want:   []string{"Grade generously on originality."},
		},
		{
			name:   "empty rubric falls back to general standards",
			rubric: rubrics.NewFreeText("Empty", "   "),
			want:   []string{"No rubric provided. Use general academic standards."},
		},
		{
			name:   "nil rubric falls back to general standards",
			rubric: nil,
			want:   []string{"No rubric provided. Use general academic standards."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := tt.rubric.GradingPrompt()
			for _, fragment := range tt.want {
				if !strings.Contains(prompt, fragment) {
					t.Errorf("prompt missing %q:\n%s", fragment, prompt)
				}
			}
		})
	}
}
