// Package middleware provides a composable HTTP middleware stack and the
// request logging middleware used by the server.
package middleware

import "net/http"

// System holds an ordered middleware stack.
type System struct {
	stack []func(http.Handler) http.Handler
}

// New creates an empty middleware System.
func New() *System {
	return &System{}
}

// Use appends middleware to the stack.
func (s *System) Use(mw func(http.Handler) http.Handler) {
	s.stack = append(s.stack, mw)
}

// Apply wraps handler with the stack; the first registered middleware is
// the outermost.
func (s *System) Apply(handler http.Handler) http.Handler {
	for i := len(s.stack) - 1; i >= 0; i-- {
		handler = s.stack[i](handler)
	}
	return handler
}
