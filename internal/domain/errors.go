package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is returned when a session id is unknown to the
// registry being queried. Eviction is a hard removal, so an evicted id is
// indistinguishable from one that never existed.
var ErrSessionNotFound = errors.New("session not found")

// ErrRecordNotFound is returned when an itinerary id is unknown or not
// visible to the caller.
var ErrRecordNotFound = errors.New("itinerary not found")

// FieldViolation describes one failed validation rule.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field from a single validation
// pass so callers can report all problems at once.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// UpstreamError wraps a failure from the external designer LLM collaborator
// after retries are exhausted. Surfaced to callers as a retryable error.
type UpstreamError struct {
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream designer service failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
