package kafka

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/zvrva/slotbooker/internal/domain"
)

func TestDecodeEvent(t *testing.T) {
	bookingID := uuid.New()
	payload, err := json.Marshal(domain.Event{
		Kind:      domain.EventBookingStatusChanged,
		BookingID: bookingID,
		Status:    string(domain.BookingStatusCancelled),
	})
	assert.NoError(t, err)

	event, err := decodeEvent(payload)
	assert.NoError(t, err)
	assert.Equal(t, domain.EventBookingStatusChanged, event.Kind)
	assert.Equal(t, bookingID, event.BookingID)
	assert.True(t, event.Broadcast())
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := decodeEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = decodeEvent([]byte(`{"at":"2026-01-01T00:00:00Z"}`))
	assert.Error(t, err)
}
