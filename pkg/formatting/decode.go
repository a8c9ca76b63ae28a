package formatting

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Decode reads a JSON request body into v, rejecting unknown fields.
func Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// ParseInt converts a form value to an int, returning zero for empty or
// malformed input. Validation of the resulting value belongs to the
// caller.
func ParseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
