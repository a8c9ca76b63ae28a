package grading

import (
	"errors"
	"net/http"
)

// Domain errors for grading operations.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrResultNotFound  = errors.New("result not found")
	ErrElementNotFound = errors.New("graded element not found")
	ErrSessionActive   = errors.New("session is still processing")
	ErrNoUnits         = errors.New("no student units to grade")
	ErrNoRubric        = errors.New("session has no rubric")
)

// MapHTTPStatus maps grading domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrResultNotFound),
		errors.Is(err, ErrElementNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionActive):
		return http.StatusConflict
	case errors.Is(err, ErrNoUnits), errors.Is(err, ErrNoRubric):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
