package booking

import (
	"errors"
	"fmt"

	"quicktable/internal/models"
)

var (
	// ErrInvalidInput marks malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState marks an operation against a closed day or a
	// disallowed status transition.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotFound marks a missing reservation, table or hours record.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an overlap with an accepted reservation.
	ErrConflict = errors.New("reservation conflict")
)

// ConflictError carries the reservations that blocked a booking so the
// caller can display them.
type ConflictError struct {
	Conflicting []models.Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicts with %d accepted reservation(s)", len(e.Conflicting))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
