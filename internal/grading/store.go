package grading

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// PathResolver maps a session ID to its persistence path.
type PathResolver func(id string) string

// Store holds grading sessions in memory with JSON persistence on
// demand. Safe for concurrent use; every mutation of a session's state
// goes through Update so readers never observe a half-written session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	resolve  PathResolver
	logger   *slog.Logger
}

// NewStore creates a session Store. resolve may be nil, which disables
// persistence.
func NewStore(resolve PathResolver, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		resolve:  resolve,
		logger:   logger.With("system", "grading"),
	}
}

// Create registers a new empty session.
func (s *Store) Create() *Session {
	session := NewSession()

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("created session", "session", session.ID)
	return session
}

// Get returns a deep copy of the session's current state.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return cloneSession(session), nil
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Update applies fn to the live session under the store lock. Returns
// ErrSessionNotFound when the session was deleted; background grading
// uses that signal to discard results for abandoned sessions.
func (s *Store) Update(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	fn(session)
	return nil
}

// Persist writes the session's current state as JSON.
func (s *Store) Persist(id string) (string, error) {
	if s.resolve == nil {
		return "", fmt.Errorf("session persistence disabled")
	}

	session, err := s.Get(id)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	path := s.resolve(id)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write session file: %w", err)
	}

	s.logger.Info("persisted session", "session", id, "path", path)
	return path, nil
}

// Restore loads a previously persisted session back into the store,
// replacing any in-memory session with the same ID.
func (s *Store) Restore(id string) (*Session, error) {
	if s.resolve == nil {
		return nil, fmt.Errorf("session persistence disabled")
	}

	data, err := os.ReadFile(s.resolve(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	s.mu.Lock()
	s.sessions[session.ID] = &session
	s.mu.Unlock()

	s.logger.Info("restored session", "session", session.ID)
	return cloneSession(&session), nil
}

// cloneSession deep-copies the slices a caller could otherwise mutate
// behind the store's back.
func cloneSession(src *Session) *Session {
	dst := *src
	dst.Units = slices.Clone(src.Units)
	dst.Results = slices.Clone(src.Results)
	for i := range dst.Results {
		dst.Results[i].Elements = slices.Clone(src.Results[i].Elements)
	}
	if src.Rubric != nil {
		rubric := *src.Rubric
		rubric.Criteria = slices.Clone(src.Rubric.Criteria)
		dst.Rubric = &rubric
	}
	return &dst
}
