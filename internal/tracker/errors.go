package tracker

import "errors"

var (
	// ErrInvariant means the status or record list is empty when it must not
	// be. It points at corrupted state, not at user input.
	ErrInvariant = errors.New("tracker invariant violated")
	// ErrNotFound is returned by Start for a name missing from the status list.
	ErrNotFound        = errors.New("status not found")
	ErrDuplicateStatus = errors.New("duplicate status name")
	ErrInvalidStatus   = errors.New("invalid status")
	// ErrOutOfRange is returned when a duration cannot be applied to a
	// timestamp without overflowing.
	ErrOutOfRange = errors.New("duration out of range")
)
