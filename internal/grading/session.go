package grading

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scorecard/internal/rubrics"
	"github.com/JaimeStill/scorecard/internal/segmentation"
)

// Session statuses.
const (
	StatusCreated    = "created"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Session is one grading workflow: loaded units, a rubric, and the
// results accumulated by a grading run. Mutated only through the Store,
// which serializes access.
type Session struct {
	ID           string              `json:"id"`
	CreatedAt    time.Time           `json:"created_at"`
	Units        []segmentation.Unit `json:"units"`
	Rubric       *rubrics.Rubric     `json:"rubric,omitempty"`
	Results      []Result            `json:"results"`
	Status       string              `json:"status"`
	CurrentIndex int                 `json:"current_index"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// NewSession creates an empty session in the created state.
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Status:    StatusCreated,
	}
}

// ProgressSnapshot is the externally visible grading progress.
type ProgressSnapshot struct {
	Status  string  `json:"status"`
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Progress derives a snapshot from the session state.
func (s *Session) Progress() ProgressSnapshot {
	total := len(s.Units)
	snap := ProgressSnapshot{
		Status:  s.Status,
		Current: s.CurrentIndex,
		Total:   total,
	}
	if total > 0 {
		snap.Percent = float64(s.CurrentIndex) / float64(total) * 100
	}
	if s.Status == StatusCompleted {
		snap.Percent = 100
	}
	return snap
}

// Result returns the result for a student ID.
func (s *Session) Result(studentID string) (*Result, bool) {
	for i := range s.Results {
		if s.Results[i].StudentID == studentID {
			return &s.Results[i], true
		}
	}
	return nil, false
}
