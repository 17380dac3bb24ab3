package domain

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "AVAILABLE"
	SlotStatusBooked    SlotStatus = "BOOKED"
	// SlotStatusDeleted is a tombstone: deleted slots stay in the store so
	// event consumers can resolve references, but never match availability
	// or overlap checks.
	SlotStatusDeleted SlotStatus = "DELETED"
)

type Slot struct {
	ID          uuid.UUID
	ServiceID   uuid.UUID
	StartAt     time.Time
	EndAt       time.Time
	Status      SlotStatus
	IsRecurring bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Overlaps reports whether the slot's window intersects [start, end].
// Touching boundaries count as an overlap.
func (s Slot) Overlaps(start, end time.Time) bool {
	return !s.StartAt.After(end) && !s.EndAt.Before(start)
}
