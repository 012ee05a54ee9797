package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrEventClosed        = errors.New("event closed")
	ErrHoldNotFound       = errors.New("hold not found")
	ErrAlreadyTerminal    = errors.New("hold already terminal")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidHoldType    = errors.New("invalid hold type")
	ErrInvalidEventID     = errors.New("invalid event id")
	ErrInvalidTicketType  = errors.New("invalid ticket type id")
	ErrTooManyHolds       = errors.New("too many active holds for session")
	ErrDuplicateRequest   = errors.New("duplicate request id")
)

// InsufficientCapacityError reports how many units are actually left so the
// caller can offer a smaller quantity instead of retrying blindly.
type InsufficientCapacityError struct {
	Requested int
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: requested %d, available %d", e.Requested, e.Available)
}

// AsInsufficientCapacity unwraps err into an InsufficientCapacityError.
func AsInsufficientCapacity(err error) (*InsufficientCapacityError, bool) {
	var ice *InsufficientCapacityError
	if errors.As(err, &ice) {
		return ice, true
	}
	return nil, false
}
