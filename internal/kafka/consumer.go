package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/zvrva/slotbooker/internal/domain"
)

// EventHandler processes one decoded domain event. Returning an error stops
// the consume loop.
type EventHandler func(ctx context.Context, event domain.Event) error

// Consumer reads the events topic as part of a consumer group and hands
// decoded domain events to a handler. Messages that do not decode are logged
// and skipped so one bad payload cannot wedge the group.
type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeEvent(msg.Value)
		if err != nil {
			c.logger.Warn("skipping undecodable event",
				zap.String("key", string(msg.Key)), zap.Error(err))
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeEvent(data []byte) (domain.Event, error) {
	var event domain.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if event.Kind == "" {
		return domain.Event{}, fmt.Errorf("decode event: missing kind")
	}
	return event, nil
}
