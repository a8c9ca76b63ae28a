package segmentation

import (
	"errors"
	"net/http"
)

// Domain errors for the segmentation pipeline.
var (
	ErrDocumentRead    = errors.New("document unreadable")
	ErrInvalidStrategy = errors.New("unknown segmentation strategy")
	ErrInvalidParams   = errors.New("invalid segmentation parameters")
)

// MapHTTPStatus maps segmentation domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidStrategy), errors.Is(err, ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, ErrDocumentRead):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
