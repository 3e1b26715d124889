package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrValidation is a generic sentinel for invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState marks an operation rejected because of the entity's current status.
	ErrInvalidState = errors.New("invalid state")
	// ErrTimeout marks a wait that elapsed before its condition became true.
	ErrTimeout = errors.New("timed out")
)

// UpstreamError records a failed call to one of the external AI services.
// It is terminal for the owning lesson and surfaces only through the job
// ledger and the lesson's skipped status, never through plan creation.
type UpstreamError struct {
	Service string // "content" | "tts"
	Status  int    // HTTP status, 0 on transport error
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s service failed (status %d): %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s service failed: %s", e.Service, e.Message)
}

func Upstream(service string, status int, message string) *UpstreamError {
	return &UpstreamError{Service: service, Status: status, Message: message}
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
