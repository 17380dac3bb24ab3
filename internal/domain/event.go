package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventBookingCreated       EventKind = "booking_created"
	EventBookingStatusChanged EventKind = "booking_status_changed"
	EventPaymentConfirmed     EventKind = "payment_confirmed"
	EventBookingPaid          EventKind = "booking_paid"
	EventSlotsUpdated         EventKind = "slots_updated"
)

// Event describes a committed state change. Events are produced after the
// transaction commits and delivered best-effort; the booking and slot rows
// remain the source of truth.
type Event struct {
	Kind       EventKind   `json:"kind"`
	Recipient  uuid.UUID   `json:"recipient,omitempty"`
	BookingID  uuid.UUID   `json:"booking_id,omitempty"`
	ServiceID  uuid.UUID   `json:"service_id,omitempty"`
	SlotIDs    []uuid.UUID `json:"slot_ids,omitempty"`
	Status     string      `json:"status,omitempty"`
	TotalCents int64       `json:"total_cents,omitempty"`
	At         time.Time   `json:"at"`
}

// Broadcast reports whether the event targets every connected listener
// rather than a single recipient.
func (e Event) Broadcast() bool {
	return e.Recipient == uuid.Nil
}
