package fanout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/zvrva/slotbooker/internal/domain"
)

func TestHub_PublishToRecipient(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	userID := uuid.New()
	otherID := uuid.New()

	conn := hub.Register(userID)
	other := hub.Register(otherID)

	hub.Publish(domain.Event{Kind: domain.EventBookingCreated, Recipient: userID})

	assert.Len(t, conn.Events(), 1)
	assert.Len(t, other.Events(), 0)

	got := <-conn.Events()
	assert.Equal(t, domain.EventBookingCreated, got.Kind)
}

func TestHub_FIFOPerConnection(t *testing.T) {
	hub := NewHub(8, zap.NewNop())
	userID := uuid.New()
	conn := hub.Register(userID)

	kinds := []domain.EventKind{
		domain.EventBookingCreated,
		domain.EventPaymentConfirmed,
		domain.EventBookingStatusChanged,
	}
	for _, k := range kinds {
		hub.Publish(domain.Event{Kind: k, Recipient: userID})
	}

	for _, want := range kinds {
		got := <-conn.Events()
		assert.Equal(t, want, got.Kind)
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	a := hub.Register(uuid.New())
	b := hub.Register(uuid.New())

	hub.Publish(domain.Event{Kind: domain.EventSlotsUpdated})

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestHub_NoConnectionDropsSilently(t *testing.T) {
	hub := NewHub(4, zap.NewNop())

	assert.NotPanics(t, func() {
		hub.Publish(domain.Event{Kind: domain.EventBookingCreated, Recipient: uuid.New()})
	})
}

func TestHub_FullBufferDropsEvent(t *testing.T) {
	hub := NewHub(1, zap.NewNop())
	userID := uuid.New()
	conn := hub.Register(userID)

	hub.Publish(domain.Event{Kind: domain.EventBookingCreated, Recipient: userID})
	hub.Publish(domain.Event{Kind: domain.EventBookingPaid, Recipient: userID})

	// second event dropped, first kept
	assert.Len(t, conn.Events(), 1)
	got := <-conn.Events()
	assert.Equal(t, domain.EventBookingCreated, got.Kind)
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	userID := uuid.New()
	conn := hub.Register(userID)

	hub.Unregister(conn)

	_, open := <-conn.Events()
	assert.False(t, open)

	// publishing after unregister must not panic
	assert.NotPanics(t, func() {
		hub.Publish(domain.Event{Kind: domain.EventBookingCreated, Recipient: userID})
	})
}

func TestHub_UnregisterTwiceIsSafe(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	userID := uuid.New()
	conn := hub.Register(userID)

	hub.Unregister(conn)
	assert.NotPanics(t, func() {
		hub.Unregister(conn)
	})

	// a sibling connection registered meanwhile is untouched
	other := hub.Register(userID)
	hub.Unregister(conn)
	hub.Publish(domain.Event{Kind: domain.EventBookingCreated, Recipient: userID})
	assert.Len(t, other.Events(), 1)
}

func TestHub_MultipleConnectionsPerUser(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	userID := uuid.New()
	first := hub.Register(userID)
	second := hub.Register(userID)

	hub.Publish(domain.Event{Kind: domain.EventBookingCreated, Recipient: userID})

	assert.Len(t, first.Events(), 1)
	assert.Len(t, second.Events(), 1)
}
