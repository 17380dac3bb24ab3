package fanout

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zvrva/slotbooker/internal/domain"
)

// Hub fans committed domain events out to live listener connections.
// Delivery is best-effort: a recipient with no connection gets nothing, and a
// connection whose buffer is full has the event dropped. Events pushed to a
// single connection keep publish order. The booking and slot rows are the
// durable truth; the hub only nudges live UIs to refetch.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID][]*Conn
	buffer int
	logger *zap.Logger
}

// Conn is one listener connection for a single user. The transport owning
// the connection drains Events and calls Unregister when it goes away.
type Conn struct {
	userID uuid.UUID
	ch     chan domain.Event
}

func (c *Conn) Events() <-chan domain.Event {
	return c.ch
}

func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		conns:  make(map[uuid.UUID][]*Conn),
		buffer: buffer,
		logger: logger,
	}
}

func (h *Hub) Register(userID uuid.UUID) *Conn {
	conn := &Conn{userID: userID, ch: make(chan domain.Event, h.buffer)}

	h.mu.Lock()
	h.conns[userID] = append(h.conns[userID], conn)
	h.mu.Unlock()

	return conn
}

func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.conns[conn.userID]
	for i, c := range conns {
		if c != conn {
			continue
		}
		conns = append(conns[:i], conns[i+1:]...)
		if len(conns) == 0 {
			delete(h.conns, conn.userID)
		} else {
			h.conns[conn.userID] = conns
		}
		// Close only on the first unregister; transports may tear a
		// connection down from more than one path.
		close(conn.ch)
		return
	}
}

// Publish delivers the event to every connection of its recipient, or to all
// connections when the event is a broadcast. Publish never blocks.
func (h *Hub) Publish(event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if event.Broadcast() {
		for _, conns := range h.conns {
			for _, c := range conns {
				h.send(c, event)
			}
		}
		return
	}

	for _, c := range h.conns[event.Recipient] {
		h.send(c, event)
	}
}

func (h *Hub) send(c *Conn, event domain.Event) {
	select {
	case c.ch <- event:
	default:
		h.logger.Warn("dropping event for slow listener",
			zap.String("user_id", c.userID.String()),
			zap.String("kind", string(event.Kind)))
	}
}
