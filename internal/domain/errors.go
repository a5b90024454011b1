package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStateConflict is the sentinel matched by errors.Is for any
	// *StateConflictError
	ErrStateConflict = errors.New("domain: operation not allowed in current booking state")
)

// StateConflictError describes a lifecycle guard violation: the operation,
// the states it requires and the state the booking was actually in.
type StateConflictError struct {
	Operation string
	Required  []BookingStatus
	Actual    BookingStatus
}

// Error implements the error interface
func (e *StateConflictError) Error() string {
	required := make([]string, len(e.Required))
	for i, s := range e.Required {
		required[i] = string(s)
	}
	return fmt.Sprintf("domain: %s requires status %s, booking is %s",
		e.Operation, strings.Join(required, "|"), e.Actual)
}

// Is makes errors.Is(err, ErrStateConflict) match any StateConflictError
func (e *StateConflictError) Is(target error) bool {
	return target == ErrStateConflict
}
