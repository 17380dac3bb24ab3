package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zvrva/slotbooker/config"
	"github.com/zvrva/slotbooker/internal/domain"
)

// RedisCache is a read-through cache for per-service slot listings. Every
// write path that can change a slot's status must invalidate the service's
// entry; the cache never sees partial state because invalidation happens
// after the owning transaction commits.
type RedisCache struct {
	client   *redis.Client
	slotsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, slotsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		slotsTTL: slotsTTL,
	}
}

func (c *RedisCache) GetSlots(ctx context.Context, serviceID uuid.UUID) ([]domain.Slot, error) {
	data, err := c.client.Get(ctx, slotsKey(serviceID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var slots []domain.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *RedisCache) SetSlots(ctx context.Context, serviceID uuid.UUID, slots []domain.Slot) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, slotsKey(serviceID), payload, c.slotsTTL).Err()
}

func (c *RedisCache) InvalidateSlots(ctx context.Context, serviceID uuid.UUID) error {
	return c.client.Del(ctx, slotsKey(serviceID)).Err()
}

func slotsKey(serviceID uuid.UUID) string {
	return fmt.Sprintf("cache:slots:%s", serviceID)
}
