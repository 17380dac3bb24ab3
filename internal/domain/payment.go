package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "SUCCESS"
	PaymentOutcomeFailed  PaymentOutcome = "FAILED"
)

// Payment records what the external processor reported. The record is kept
// even when the outcome is a failure; only a success moves the booking.
type Payment struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	AmountCents int64
	ProcessorID string
	Outcome     PaymentOutcome
	CreatedAt   time.Time
}
