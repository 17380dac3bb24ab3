package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	ServiceID   uuid.UUID
	ScheduledAt time.Time
	Status      BookingStatus
	SlotIDs     []uuid.UUID
	Snapshot    *PriceSnapshot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PriceSnapshot freezes the service's priceable attributes at booking time.
// It is written once, in the same transaction as the booking, and never updated.
type PriceSnapshot struct {
	BookingID      uuid.UUID
	ServiceName    string
	UnitPriceCents int64
	Quantity       int
	TotalCents     int64
	CreatedAt      time.Time
}

type BookingFilter struct {
	CustomerID *uuid.UUID
	VendorID   *uuid.UUID
	Status     *BookingStatus
}

// CanTransitionTo reports whether moving from s to next is a legal booking
// transition. Same-state moves are rejected so no-change updates never emit
// duplicate notifications, and CANCELLED is terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusActive || next == BookingStatusCancelled
	case BookingStatusActive:
		return next == BookingStatusCancelled
	default:
		return false
	}
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusActive, BookingStatusCancelled:
		return true
	}
	return false
}
