package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zvrva/slotbooker/internal/domain"
	"github.com/zvrva/slotbooker/internal/repository"
)

type SlotUseCase interface {
	CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.Slot, error)
	ListSlots(ctx context.Context, serviceID uuid.UUID, from, to *time.Time) ([]domain.Slot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
}

type Cache interface {
	GetSlots(ctx context.Context, serviceID uuid.UUID) ([]domain.Slot, error)
	SetSlots(ctx context.Context, serviceID uuid.UUID, slots []domain.Slot) error
	InvalidateSlots(ctx context.Context, serviceID uuid.UUID) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SlotService struct {
	slots       repository.SlotRepository
	directory   repository.DirectoryRepository
	cache       Cache
	producer    Producer
	eventsTopic string
	logger      *zap.Logger
}

type CreateSlotInput struct {
	ServiceID   uuid.UUID
	StartAt     time.Time
	EndAt       time.Time
	IsRecurring bool
}

func NewSlotService(
	slots repository.SlotRepository,
	directory repository.DirectoryRepository,
	cache Cache,
	producer Producer,
	eventsTopic string,
	logger *zap.Logger,
) *SlotService {
	return &SlotService{
		slots:       slots,
		directory:   directory,
		cache:       cache,
		producer:    producer,
		eventsTopic: eventsTopic,
		logger:      logger,
	}
}

// CreateSlot declares a new bookable window. The repository rejects windows
// that intersect an existing non-deleted slot of the service, touching
// boundaries included.
func (s *SlotService) CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.Slot, error) {
	if !input.StartAt.Before(input.EndAt) {
		return nil, fmt.Errorf("%w: slot start must be before end", domain.ErrValidation)
	}

	if _, err := s.directory.GetService(ctx, input.ServiceID); err != nil {
		return nil, err
	}

	slot := &domain.Slot{
		ID:          uuid.New(),
		ServiceID:   input.ServiceID,
		StartAt:     input.StartAt,
		EndAt:       input.EndAt,
		IsRecurring: input.IsRecurring,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}

	s.invalidate(ctx, slot.ServiceID)
	s.broadcast(ctx, slot.ServiceID, slot.ID, domain.SlotStatusAvailable)

	return slot, nil
}

// ListSlots reads through the cache when no time range is given; ranged
// queries go straight to the store.
func (s *SlotService) ListSlots(ctx context.Context, serviceID uuid.UUID, from, to *time.Time) ([]domain.Slot, error) {
	cacheable := from == nil && to == nil
	if cacheable && s.cache != nil {
		if cached, err := s.cache.GetSlots(ctx, serviceID); err == nil && cached != nil {
			return cached, nil
		}
	}

	slots, err := s.slots.ListByService(ctx, serviceID, from, to)
	if err != nil {
		return nil, err
	}
	if cacheable && s.cache != nil {
		if err := s.cache.SetSlots(ctx, serviceID, slots); err != nil {
			s.logger.Warn("failed to cache slots",
				zap.String("service_id", serviceID.String()), zap.Error(err))
		}
	}
	return slots, nil
}

func (s *SlotService) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.slots.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, slot.ServiceID)
	s.broadcast(ctx, slot.ServiceID, slot.ID, domain.SlotStatusDeleted)
	return nil
}

func (s *SlotService) invalidate(ctx context.Context, serviceID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSlots(ctx, serviceID); err != nil {
		s.logger.Warn("failed to invalidate slot cache",
			zap.String("service_id", serviceID.String()), zap.Error(err))
	}
}

func (s *SlotService) broadcast(ctx context.Context, serviceID, slotID uuid.UUID, status domain.SlotStatus) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := domain.Event{
		Kind:      domain.EventSlotsUpdated,
		ServiceID: serviceID,
		SlotIDs:   []uuid.UUID{slotID},
		Status:    string(status),
		At:        time.Now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, serviceID.String(), event); err != nil {
		s.logger.Warn("failed to publish slot event",
			zap.String("service_id", serviceID.String()), zap.Error(err))
	}
}

var _ SlotUseCase = (*SlotService)(nil)
