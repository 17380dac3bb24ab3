package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	testCases := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"pending to active", BookingStatusPending, BookingStatusActive, true},
		{"pending to cancelled", BookingStatusPending, BookingStatusCancelled, true},
		{"active to cancelled", BookingStatusActive, BookingStatusCancelled, true},
		{"pending to pending", BookingStatusPending, BookingStatusPending, false},
		{"active to active", BookingStatusActive, BookingStatusActive, false},
		{"active to pending", BookingStatusActive, BookingStatusPending, false},
		{"cancelled to pending", BookingStatusCancelled, BookingStatusPending, false},
		{"cancelled to active", BookingStatusCancelled, BookingStatusActive, false},
		{"cancelled to cancelled", BookingStatusCancelled, BookingStatusCancelled, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestBookingStatus_Valid(t *testing.T) {
	assert.True(t, BookingStatusPending.Valid())
	assert.True(t, BookingStatusActive.Valid())
	assert.True(t, BookingStatusCancelled.Valid())
	assert.False(t, BookingStatus("COMPLETED").Valid())
	assert.False(t, BookingStatus("").Valid())
}

func TestSlot_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	slot := Slot{StartAt: base, EndAt: base.Add(time.Hour)} // 10:00-11:00

	testCases := []struct {
		name     string
		start    time.Time
		end      time.Time
		overlaps bool
	}{
		{"fully inside", base.Add(15 * time.Minute), base.Add(30 * time.Minute), true},
		{"straddles start", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), true},
		{"straddles end", base.Add(30 * time.Minute), base.Add(90 * time.Minute), true},
		{"touching at start", base.Add(-time.Hour), base, true},
		{"touching at end", slot.EndAt, slot.EndAt.Add(time.Hour), true},
		{"before", base.Add(-2 * time.Hour), base.Add(-time.Hour - time.Minute), false},
		{"after", slot.EndAt.Add(time.Minute), slot.EndAt.Add(time.Hour), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlaps, slot.Overlaps(tc.start, tc.end))
		})
	}
}
