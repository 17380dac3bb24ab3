package slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/zvrva/slotbooker/internal/domain"
)

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockSlotRepository) ListByService(ctx context.Context, serviceID uuid.UUID, from, to *time.Time) ([]domain.Slot, error) {
	args := m.Called(ctx, serviceID, from, to)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDirectoryRepository struct {
	mock.Mock
}

func (m *MockDirectoryRepository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDirectoryRepository) GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSlots(ctx context.Context, serviceID uuid.UUID) ([]domain.Slot, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockCache) SetSlots(ctx context.Context, serviceID uuid.UUID, slots []domain.Slot) error {
	args := m.Called(ctx, serviceID, slots)
	return args.Error(0)
}

func (m *MockCache) InvalidateSlots(ctx context.Context, serviceID uuid.UUID) error {
	args := m.Called(ctx, serviceID)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
	events []domain.Event
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	if event, ok := value.(domain.Event); ok {
		m.events = append(m.events, event)
	}
	return args.Error(0)
}

func newService() (*SlotService, *MockSlotRepository, *MockDirectoryRepository, *MockCache, *MockProducer) {
	slotRepo := &MockSlotRepository{}
	directory := &MockDirectoryRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	svc := NewSlotService(slotRepo, directory, cache, producer, "booking_events", zap.NewNop())
	return svc, slotRepo, directory, cache, producer
}

func TestSlotService_CreateSlot_Success(t *testing.T) {
	svc, slotRepo, directory, cache, producer := newService()
	ctx := context.Background()

	serviceID := uuid.New()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	directory.On("GetService", ctx, serviceID).
		Return(&domain.Service{ID: serviceID, VendorID: uuid.New(), UnitPriceCents: 1000}, nil).Once()
	slotRepo.On("Create", ctx, mock.AnythingOfType("*domain.Slot")).Return(nil).Once()
	cache.On("InvalidateSlots", ctx, serviceID).Return(nil).Once()
	producer.On("Publish", ctx, "booking_events", serviceID.String(), mock.Anything).Return(nil).Once()

	slot, err := svc.CreateSlot(ctx, CreateSlotInput{ServiceID: serviceID, StartAt: start, EndAt: end})

	assert.NoError(t, err)
	assert.Equal(t, serviceID, slot.ServiceID)

	if assert.Len(t, producer.events, 1) {
		assert.Equal(t, domain.EventSlotsUpdated, producer.events[0].Kind)
		assert.True(t, producer.events[0].Broadcast())
	}

	slotRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSlotService_CreateSlot_InvalidRange(t *testing.T) {
	svc, slotRepo, _, _, _ := newService()
	ctx := context.Background()

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"end before start", start, start.Add(-time.Hour)},
		{"zero length", start, start},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSlot(ctx, CreateSlotInput{ServiceID: uuid.New(), StartAt: tc.start, EndAt: tc.end})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	slotRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSlotService_CreateSlot_Overlap(t *testing.T) {
	svc, slotRepo, directory, cache, producer := newService()
	ctx := context.Background()
	serviceID := uuid.New()

	directory.On("GetService", ctx, serviceID).
		Return(&domain.Service{ID: serviceID, UnitPriceCents: 1000}, nil).Once()
	slotRepo.On("Create", ctx, mock.Anything).Return(domain.ErrSlotOverlap).Once()

	start := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	_, err := svc.CreateSlot(ctx, CreateSlotInput{ServiceID: serviceID, StartAt: start, EndAt: start.Add(time.Hour)})

	assert.ErrorIs(t, err, domain.ErrSlotOverlap)
	assert.Empty(t, producer.events)
	cache.AssertNotCalled(t, "InvalidateSlots", mock.Anything, mock.Anything)
}

func TestSlotService_CreateSlot_ServiceNotFound(t *testing.T) {
	svc, slotRepo, directory, _, _ := newService()
	ctx := context.Background()
	serviceID := uuid.New()

	directory.On("GetService", ctx, serviceID).Return(nil, domain.ErrServiceNotFound).Once()

	start := time.Now()
	_, err := svc.CreateSlot(ctx, CreateSlotInput{ServiceID: serviceID, StartAt: start, EndAt: start.Add(time.Hour)})

	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
	slotRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSlotService_ListSlots_CacheHit(t *testing.T) {
	svc, slotRepo, _, cache, _ := newService()
	ctx := context.Background()
	serviceID := uuid.New()

	cached := []domain.Slot{{ID: uuid.New(), ServiceID: serviceID}}
	cache.On("GetSlots", ctx, serviceID).Return(cached, nil).Once()

	listed, err := svc.ListSlots(ctx, serviceID, nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, cached, listed)
	slotRepo.AssertNotCalled(t, "ListByService", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSlotService_ListSlots_CacheMiss(t *testing.T) {
	svc, slotRepo, _, cache, _ := newService()
	ctx := context.Background()
	serviceID := uuid.New()

	fromStore := []domain.Slot{{ID: uuid.New(), ServiceID: serviceID}}
	cache.On("GetSlots", ctx, serviceID).Return(nil, nil).Once()
	slotRepo.On("ListByService", ctx, serviceID, (*time.Time)(nil), (*time.Time)(nil)).Return(fromStore, nil).Once()
	cache.On("SetSlots", ctx, serviceID, fromStore).Return(nil).Once()

	listed, err := svc.ListSlots(ctx, serviceID, nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, fromStore, listed)
	cache.AssertExpectations(t)
}

func TestSlotService_ListSlots_RangedBypassesCache(t *testing.T) {
	svc, slotRepo, _, cache, _ := newService()
	ctx := context.Background()
	serviceID := uuid.New()
	from := time.Now()

	slotRepo.On("ListByService", ctx, serviceID, &from, (*time.Time)(nil)).Return([]domain.Slot{}, nil).Once()

	_, err := svc.ListSlots(ctx, serviceID, &from, nil)

	assert.NoError(t, err)
	cache.AssertNotCalled(t, "GetSlots", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "SetSlots", mock.Anything, mock.Anything, mock.Anything)
}

func TestSlotService_DeleteSlot(t *testing.T) {
	svc, slotRepo, _, cache, producer := newService()
	ctx := context.Background()

	slotID := uuid.New()
	serviceID := uuid.New()

	slotRepo.On("GetByID", ctx, slotID).
		Return(&domain.Slot{ID: slotID, ServiceID: serviceID, Status: domain.SlotStatusAvailable}, nil).Once()
	slotRepo.On("Delete", ctx, slotID).Return(nil).Once()
	cache.On("InvalidateSlots", ctx, serviceID).Return(nil).Once()
	producer.On("Publish", ctx, "booking_events", serviceID.String(), mock.Anything).Return(nil).Once()

	err := svc.DeleteSlot(ctx, slotID)

	assert.NoError(t, err)
	if assert.Len(t, producer.events, 1) {
		assert.Equal(t, string(domain.SlotStatusDeleted), producer.events[0].Status)
	}
	slotRepo.AssertExpectations(t)
}

func TestSlotService_DeleteSlot_NotFound(t *testing.T) {
	svc, slotRepo, _, _, _ := newService()
	ctx := context.Background()
	slotID := uuid.New()

	slotRepo.On("GetByID", ctx, slotID).Return(nil, domain.ErrSlotNotFound).Once()

	err := svc.DeleteSlot(ctx, slotID)

	assert.ErrorIs(t, err, domain.ErrSlotNotFound)
	slotRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
