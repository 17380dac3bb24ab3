package domain

import "errors"

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrSlotNotFound     = errors.New("slot not found")
	ErrBookingNotFound  = errors.New("booking not found")
)

var (
	ErrSlotUnavailable   = errors.New("one or more slots are not available")
	ErrSlotOverlap       = errors.New("slot overlaps an existing slot of the service")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

var (
	ErrValidation = errors.New("validation error")
)

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrServiceNotFound) ||
		errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}

// IsConflict reports whether err belongs to the conflict family: state that
// moved under the caller, not a malformed request.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrSlotOverlap) ||
		errors.Is(err, ErrInvalidTransition)
}
