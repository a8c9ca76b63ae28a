package providers

import (
	"errors"
	"net/http"
)

// Domain errors for provider construction and generation.
var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingAPIKey   = errors.New("provider requires an api key")
	ErrMissingBaseURL  = errors.New("provider requires a base url")
	ErrGeneration      = errors.New("generation failed")
)

// MapHTTPStatus maps provider domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownProvider),
		errors.Is(err, ErrMissingAPIKey),
		errors.Is(err, ErrMissingBaseURL):
		return http.StatusBadRequest
	case errors.Is(err, ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
