package grading

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeStill/scorecard/internal/documents"
	"github.com/JaimeStill/scorecard/internal/providers"
	"github.com/JaimeStill/scorecard/internal/rubrics"
	"github.com/JaimeStill/scorecard/internal/segmentation"
)

// System defines the grading workflow operations.
type System interface {
	CreateSession() *Session
	GetSession(id string) (*Session, error)
	DeleteSession(id string)
	LoadUnits(ctx context.Context, id string, paths []string, strategy segmentation.Strategy, params segmentation.Params) ([]segmentation.Unit, error)
	LoadRubricText(ctx context.Context, id, name, text string) (*rubrics.Rubric, error)
	LoadRubricFile(ctx context.Context, id, path string) (*rubrics.Rubric, error)
	ParseRubric(ctx context.Context, id string, cfg providers.Config) (*rubrics.Rubric, error)
	StartGrading(id string, cfg providers.Config, opts Options) error
	CancelGrading(id string) error
	Progress(id string) (ProgressSnapshot, error)
	UpdateGrade(id string, req UpdateGradeRequest) error
	PersistSession(id string) (string, error)
	RestoreSession(id string) (*Session, error)
}

// UpdateGradeRequest carries a manual adjustment to one student's result.
type UpdateGradeRequest struct {
	StudentID       string   `json:"student_id"`
	Criterion       string   `json:"criterion,omitempty"`
	Marks           *float64 `json:"marks,omitempty"`
	OverallFeedback *string  `json:"overall_feedback,omitempty"`
}

type system struct {
	store        *Store
	engine       *segmentation.Engine
	loader       *rubrics.Loader
	logger       *slog.Logger
	newGenerator func(ctx context.Context, cfg providers.Config) (providers.Generator, error)
	mu           sync.Mutex
	cancels      map[string]context.CancelFunc
}

// NewSystem creates the grading System.
func NewSystem(store *Store, engine *segmentation.Engine, loader *rubrics.Loader, logger *slog.Logger) System {
	return &system{
		store:  store,
		engine: engine,
		loader: loader,
		logger: logger.With("system", "grading"),
		newGenerator: func(ctx context.Context, cfg providers.Config) (providers.Generator, error) {
			return providers.New(ctx, cfg)
		},
		cancels: make(map[string]context.CancelFunc),
	}
}

func (s *system) CreateSession() *Session {
	return s.store.Create()
}

func (s *system) GetSession(id string) (*Session, error) {
	return s.store.Get(id)
}

func (s *system) DeleteSession(id string) {
	s.CancelGrading(id)
	s.store.Delete(id)
}

// LoadUnits opens the uploaded documents, segments them, and attaches
// the resulting units to the session.
func (s *system) LoadUnits(ctx context.Context, id string, paths []string, strategy segmentation.Strategy, params segmentation.Params) ([]segmentation.Unit, error) {
	if _, err := s.store.Get(id); err != nil {
		return nil, err
	}

	docs, err := documents.OpenAll(ctx, paths)
	if err != nil {
		return nil, err
	}
	defer documents.CloseAll(docs)

	segDocs := make([]segmentation.Document, len(docs))
	for i, d := range docs {
		segDocs[i] = d
	}

	result, err := s.engine.Segment(ctx, segDocs, strategy, params)
	if err != nil {
		return nil, err
	}

	err = s.store.Update(id, func(session *Session) {
		session.Units = result.Units
		session.Results = nil
		session.Status = StatusCreated
		session.CurrentIndex = 0
		session.ErrorMessage = ""
	})
	if err != nil {
		return nil, err
	}

	return result.Units, nil
}

func (s *system) LoadRubricText(ctx context.Context, id, name, text string) (*rubrics.Rubric, error) {
	if name == "" {
		name = "Custom Rubric"
	}
	rubric := rubrics.NewFreeText(name, text)
	if err := s.attachRubric(id, rubric); err != nil {
		return nil, err
	}
	return rubric, nil
}

func (s *system) LoadRubricFile(ctx context.Context, id, path string) (*rubrics.Rubric, error) {
	rubric, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.attachRubric(id, rubric); err != nil {
		return nil, err
	}
	return rubric, nil
}

func (s *system) attachRubric(id string, rubric *rubrics.Rubric) error {
	return s.store.Update(id, func(session *Session) {
		session.Rubric = rubric
	})
}

// ParseRubric enriches the session's free-text rubric into structured
// criteria using the configured provider.
func (s *system) ParseRubric(ctx context.Context, id string, cfg providers.Config) (*rubrics.Rubric, error) {
	session, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if session.Rubric == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRubric, id)
	}

	gen, err := s.newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	orch := NewOrchestrator(gen, Options{}, s.logger)
	rubric, err := orch.ParseRubric(ctx, session.Rubric)
	if err != nil {
		return nil, err
	}

	if err := s.attachRubric(id, rubric); err != nil {
		return nil, err
	}
	return rubric, nil
}

// StartGrading launches a background grading run for the session. The
// run writes its progress and results back through the store; if the
// session is deleted mid-run the updates fail with ErrSessionNotFound
// and the run stops, discarding orphaned results.
func (s *system) StartGrading(id string, cfg providers.Config, opts Options) error {
	session, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if session.Status == StatusProcessing {
		return fmt.Errorf("%w: %s", ErrSessionActive, id)
	}
	if len(session.Units) == 0 {
		return ErrNoUnits
	}
	if session.Rubric == nil {
		return fmt.Errorf("%w: %s", ErrNoRubric, id)
	}

	ctx, cancel := context.WithCancel(context.Background())

	gen, err := s.newGenerator(ctx, cfg)
	if err != nil {
		cancel()
		return err
	}

	err = s.store.Update(id, func(session *Session) {
		session.Status = StatusProcessing
		session.Results = nil
		session.CurrentIndex = 0
		session.ErrorMessage = ""
	})
	if err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	s.cancels[id] = cancel
	s.mu.Unlock()

	go s.run(ctx, id, session, gen, opts)
	return nil
}

func (s *system) run(ctx context.Context, id string, session *Session, gen providers.Generator, opts Options) {
	defer func() {
		s.mu.Lock()
		if cancel, ok := s.cancels[id]; ok {
			cancel()
			delete(s.cancels, id)
		}
		s.mu.Unlock()
	}()

	orch := NewOrchestrator(gen, opts, s.logger)

	progress := func(current, total int, label string) {
		s.store.Update(id, func(session *Session) {
			session.CurrentIndex = current
		})
	}

	results, err := orch.GradeAll(ctx, session.Units, session.Rubric, progress)

	updateErr := s.store.Update(id, func(session *Session) {
		session.Results = results
		if err != nil {
			session.Status = StatusError
			session.ErrorMessage = err.Error()
			return
		}
		session.Status = StatusCompleted
		session.CurrentIndex = len(session.Units)
	})
	if updateErr != nil {
		s.logger.Warn("discarding results for deleted session", "session", id)
	}
}

// CancelGrading stops an in-flight grading run. Cancelling a session
// with no active run is a no-op.
func (s *system) CancelGrading(id string) error {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	if ok {
		delete(s.cancels, id)
	}
	s.mu.Unlock()

	if ok {
		cancel()
	}
	return nil
}

func (s *system) Progress(id string) (ProgressSnapshot, error) {
	session, err := s.store.Get(id)
	if err != nil {
		return ProgressSnapshot{}, err
	}
	return session.Progress(), nil
}

// UpdateGrade applies a manual adjustment to one student's result.
func (s *system) UpdateGrade(id string, req UpdateGradeRequest) error {
	var applyErr error
	err := s.store.Update(id, func(session *Session) {
		result, ok := session.Result(req.StudentID)
		if !ok {
			applyErr = fmt.Errorf("%w: %s", ErrResultNotFound, req.StudentID)
			return
		}
		if req.Criterion != "" && req.Marks != nil {
			applyErr = result.UpdateElement(req.Criterion, *req.Marks, "")
			if applyErr != nil {
				return
			}
		}
		if req.OverallFeedback != nil {
			result.OverallFeedback = *req.OverallFeedback
			result.ManuallyEdited = true
		}
	})
	if err != nil {
		return err
	}
	return applyErr
}

func (s *system) PersistSession(id string) (string, error) {
	return s.store.Persist(id)
}

func (s *system) RestoreSession(id string) (*Session, error) {
	return s.store.Restore(id)
}
