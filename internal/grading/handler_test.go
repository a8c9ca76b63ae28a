package grading_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/scorecard/internal/grading"
	"github.com/JaimeStill/scorecard/internal/providers"
	"github.com/JaimeStill/scorecard/internal/rubrics"
	"github.com/JaimeStill/scorecard/internal/segmentation"
)

// stubSystem records calls and serves canned sessions.
type stubSystem struct {
	session   *grading.Session
	started   bool
	startCfg  providers.Config
	startOpts grading.Options
	updated   *grading.UpdateGradeRequest
	cancelled bool
	deleted   string
}

func (s *stubSystem) CreateSession() *grading.Session { return s.session }

func (s *stubSystem) GetSession(id string) (*grading.Session, error) {
	if s.session == nil || s.session.ID != id {
		return nil, grading.ErrSessionNotFound
	}
	return s.session, nil
}

func (s *stubSystem) DeleteSession(id string) { s.deleted = id }

func (s *stubSystem) LoadUnits(ctx context.Context, id string, paths []string, strategy segmentation.Strategy, params segmentation.Params) ([]segmentation.Unit, error) {
	return nil, nil
}

func (s *stubSystem) LoadRubricText(ctx context.Context, id, name, text string) (*rubrics.Rubric, error) {
	return rubrics.NewFreeText(name, text), nil
}

func (s *stubSystem) LoadRubricFile(ctx context.Context, id, path string) (*rubrics.Rubric, error) {
	return rubrics.NewFreeText("file", "text"), nil
}

func (s *stubSystem) ParseRubric(ctx context.Context, id string, cfg providers.Config) (*rubrics.Rubric, error) {
	return s.session.Rubric, nil
}

func (s *stubSystem) StartGrading(id string, cfg providers.Config, opts grading.Options) error {
	if s.session == nil || s.session.ID != id {
		return grading.ErrSessionNotFound
	}
	s.started = true
	s.startCfg = cfg
	s.startOpts = opts
	return nil
}

func (s *stubSystem) CancelGrading(id string) error { s.cancelled = true; return nil }

func (s *stubSystem) Progress(id string) (grading.ProgressSnapshot, error) {
	if s.session == nil || s.session.ID != id {
		return grading.ProgressSnapshot{}, grading.ErrSessionNotFound
	}
	return s.session.Progress(), nil
}

func (s *stubSystem) UpdateGrade(id string, req grading.UpdateGradeRequest) error {
	if s.session == nil || s.session.ID != id {
		return grading.ErrSessionNotFound
	}
	s.updated = &req
	return nil
}

func (s *stubSystem) PersistSession(id string) (string, error) { return "/tmp/" + id + ".json", nil }

func (s *stubSystem) RestoreSession(id string) (*grading.Session, error) { return s.session, nil }

func newTestHandler(sys grading.System) *grading.Handler {
	return grading.NewHandler(sys, nil, grading.Defaults{
		Provider: providers.Config{Provider: providers.ProviderOllama, Model: "llama3.1"},
		Options:  grading.Options{MarkingMode: grading.MarkAuto, FeedbackStyle: grading.FeedbackDetailed},
	}, 1<<20, testLogger())
}

func serve(h *grading.Handler, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerFind(t *testing.T) {
	session := grading.NewSession()
	sys := &stubSystem{session: session}

	rec := serve(newTestHandler(sys), httptest.NewRequest("GET", "/sessions/"+session.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var got grading.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != session.ID {
		t.Errorf("id: got %s", got.ID)
	}
}

func TestHandlerFindUnknown(t *testing.T) {
	rec := serve(newTestHandler(&stubSystem{}), httptest.NewRequest("GET", "/sessions/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestHandlerStartGradingDefaults(t *testing.T) {
	session := grading.NewSession()
	sys := &stubSystem{session: session}

	rec := serve(newTestHandler(sys), httptest.NewRequest("POST", "/sessions/"+session.ID+"/grade", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want 202", rec.Code)
	}

	if !sys.started {
		t.Fatal("grading not started")
	}
	if sys.startCfg.Provider != providers.ProviderOllama {
		t.Errorf("provider default: got %s", sys.startCfg.Provider)
	}
	if sys.startOpts.MarkingMode != grading.MarkAuto {
		t.Errorf("marking mode default: got %s", sys.startOpts.MarkingMode)
	}
}

func TestHandlerStartGradingOverrides(t *testing.T) {
	session := grading.NewSession()
	sys := &stubSystem{session: session}

	body := `{
		"provider": {"provider": "openai", "model": "gpt-4o-mini", "api_key": "sk-x"},
		"marking_mode": "suggestions",
		"feedback_style": "brief"
	}`
	req := httptest.NewRequest("POST", "/sessions/"+session.ID+"/grade", strings.NewReader(body))

	rec := serve(newTestHandler(sys), req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}

	if sys.startCfg.Provider != "openai" || sys.startCfg.Model != "gpt-4o-mini" {
		t.Errorf("provider override: %+v", sys.startCfg)
	}
	if sys.startOpts.MarkingMode != grading.MarkSuggestions {
		t.Errorf("marking mode: got %s", sys.startOpts.MarkingMode)
	}
	if sys.startOpts.FeedbackStyle != grading.FeedbackBrief {
		t.Errorf("feedback style: got %s", sys.startOpts.FeedbackStyle)
	}
}

func TestHandlerProgress(t *testing.T) {
	session := grading.NewSession()
	session.Units = []segmentation.Unit{{ID: "a"}, {ID: "b"}}
	session.Status = grading.StatusProcessing
	session.CurrentIndex = 1
	sys := &stubSystem{session: session}

	rec := serve(newTestHandler(sys), httptest.NewRequest("GET", "/sessions/"+session.ID+"/progress", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var snap grading.ProgressSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Current != 1 || snap.Total != 2 || snap.Percent != 50 {
		t.Errorf("snapshot: %+v", snap)
	}
}

func TestHandlerUpdateGrade(t *testing.T) {
	session := grading.NewSession()
	sys := &stubSystem{session: session}

	body := `{"student_id": "S-1", "criterion": "Clarity", "marks": 15}`
	req := httptest.NewRequest("POST", "/sessions/"+session.ID+"/grades", strings.NewReader(body))

	rec := serve(newTestHandler(sys), req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}

	if sys.updated == nil {
		t.Fatal("update not applied")
	}
	if sys.updated.StudentID != "S-1" || sys.updated.Criterion != "Clarity" {
		t.Errorf("request: %+v", sys.updated)
	}
	if sys.updated.Marks == nil || *sys.updated.Marks != 15 {
		t.Errorf("marks: %+v", sys.updated.Marks)
	}
}

func TestHandlerDelete(t *testing.T) {
	session := grading.NewSession()
	sys := &stubSystem{session: session}

	rec := serve(newTestHandler(sys), httptest.NewRequest("DELETE", "/sessions/"+session.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d", rec.Code)
	}
	if sys.deleted != session.ID {
		t.Errorf("deleted: got %s", sys.deleted)
	}
}
