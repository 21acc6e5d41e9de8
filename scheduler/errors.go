package scheduler

import (
	"fmt"

	"github.com/avishkarm/clinic-scheduler/models"
)

// ValidationError rejects malformed input before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError carries the bookings that collide with a requested interval
// so the caller can present alternatives. A routine outcome, not a fault.
type ConflictError struct {
	Conflicts []models.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot conflicts with %d existing booking(s)", len(e.Conflicts))
}

// NotFoundError reports a missing provider, subject or booking.
type NotFoundError struct {
	Kind string
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// ConcurrencyError means the transactional guard aborted the write under a
// race. The write path retries it with fresh data before surfacing it.
type ConcurrencyError struct {
	Err error
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrent write detected: %v", e.Err)
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Err
}
