package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zvrva/slotbooker/internal/domain"
	"github.com/zvrva/slotbooker/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

// Cache is the slot-listing cache the service must invalidate whenever a
// slot changes status under its feet.
type Cache interface {
	InvalidateSlots(ctx context.Context, serviceID uuid.UUID) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings    repository.BookingRepository
	directory   repository.DirectoryRepository
	cache       Cache
	producer    Producer
	eventsTopic string
	pendingTTL  time.Duration
	logger      *zap.Logger
}

type CreateBookingInput struct {
	CustomerID  uuid.UUID
	ServiceID   uuid.UUID
	ScheduledAt time.Time
	SlotIDs     []uuid.UUID
	Quantity    int
}

type RecordPaymentInput struct {
	BookingID   uuid.UUID
	AmountCents int64
	ProcessorID string
	Outcome     domain.PaymentOutcome
}

func NewBookingService(
	bookings repository.BookingRepository,
	directory repository.DirectoryRepository,
	cache Cache,
	producer Producer,
	eventsTopic string,
	pendingTTL time.Duration,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:    bookings,
		directory:   directory,
		cache:       cache,
		producer:    producer,
		eventsTopic: eventsTopic,
		pendingTTL:  pendingTTL,
		logger:      logger,
	}
}

// CreateBooking reserves a slot set for a customer. Availability check, slot
// lock, booking insert and price snapshot all commit or roll back together;
// events go out only once the transaction has committed.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	exists, err := s.directory.UserExists(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrCustomerNotFound
	}

	service, err := s.directory.GetService(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if service.UnitPriceCents <= 0 {
		return nil, fmt.Errorf("%w: service has no positive unit price", domain.ErrValidation)
	}

	booking := &domain.Booking{
		ID:          uuid.New(),
		CustomerID:  input.CustomerID,
		ServiceID:   input.ServiceID,
		ScheduledAt: input.ScheduledAt,
		Status:      domain.BookingStatusPending,
		SlotIDs:     input.SlotIDs,
	}
	snap := &domain.PriceSnapshot{
		ServiceName:    service.Name,
		UnitPriceCents: service.UnitPriceCents,
		Quantity:       quantity,
		TotalCents:     service.UnitPriceCents * int64(quantity),
	}

	if err := s.bookings.Create(ctx, booking, snap); err != nil {
		return nil, err
	}

	if len(booking.SlotIDs) > 0 {
		s.invalidateSlots(ctx, booking.ServiceID)
	}

	s.publish(ctx, domain.Event{
		Kind:       domain.EventBookingCreated,
		Recipient:  service.VendorID,
		BookingID:  booking.ID,
		ServiceID:  booking.ServiceID,
		SlotIDs:    booking.SlotIDs,
		Status:     string(booking.Status),
		TotalCents: snap.TotalCents,
	})
	if len(booking.SlotIDs) > 0 {
		s.publish(ctx, domain.Event{
			Kind:      domain.EventSlotsUpdated,
			ServiceID: booking.ServiceID,
			SlotIDs:   booking.SlotIDs,
			Status:    string(domain.SlotStatusBooked),
		})
	}

	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	return s.bookings.List(ctx, filter)
}

// UpdateStatus moves a booking through the state machine. Cancellation
// releases the booking's slots in the same transaction as the status write.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
	}

	release := status == domain.BookingStatusCancelled && len(current.SlotIDs) > 0
	updated, err := s.bookings.UpdateStatus(ctx, id, current.Status, status, release)
	if err != nil {
		return nil, err
	}

	if release {
		s.invalidateSlots(ctx, updated.ServiceID)
	}

	s.publishStatusChanged(ctx, updated)
	if release {
		s.publish(ctx, domain.Event{
			Kind:      domain.EventSlotsUpdated,
			ServiceID: updated.ServiceID,
			SlotIDs:   updated.SlotIDs,
			Status:    string(domain.SlotStatusAvailable),
		})
	}

	return updated, nil
}

// RecordPayment stores the processor's verdict. A successful outcome flips
// the booking PENDING->ACTIVE atomically with the payment insert; a failed
// one is stored without touching the booking.
func (s *BookingService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error) {
	if input.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if input.Outcome != domain.PaymentOutcomeSuccess && input.Outcome != domain.PaymentOutcomeFailed {
		return nil, fmt.Errorf("%w: unknown payment outcome %q", domain.ErrValidation, input.Outcome)
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}

	activate := input.Outcome == domain.PaymentOutcomeSuccess
	if activate && !booking.Status.CanTransitionTo(domain.BookingStatusActive) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, booking.Status, domain.BookingStatusActive)
	}

	payment := &domain.Payment{
		ID:          uuid.New(),
		BookingID:   input.BookingID,
		AmountCents: input.AmountCents,
		ProcessorID: input.ProcessorID,
		Outcome:     input.Outcome,
	}
	if err := s.bookings.RecordPayment(ctx, payment, activate); err != nil {
		return nil, err
	}

	if activate {
		s.publish(ctx, domain.Event{
			Kind:      domain.EventPaymentConfirmed,
			Recipient: booking.CustomerID,
			BookingID: booking.ID,
			ServiceID: booking.ServiceID,
			Status:    string(domain.BookingStatusActive),
		})
		if service, err := s.directory.GetService(ctx, booking.ServiceID); err == nil {
			s.publish(ctx, domain.Event{
				Kind:       domain.EventBookingPaid,
				Recipient:  service.VendorID,
				BookingID:  booking.ID,
				ServiceID:  booking.ServiceID,
				Status:     string(domain.BookingStatusActive),
				TotalCents: payment.AmountCents,
			})
		} else {
			s.logger.Warn("vendor lookup for payment event failed",
				zap.String("booking_id", booking.ID.String()), zap.Error(err))
		}
	}

	return payment, nil
}

// ExpirePendingBookings cancels PENDING bookings older than the configured
// TTL and releases their slots. Run periodically by the worker.
func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	cutoff := time.Now().Add(-s.pendingTTL)
	expired, err := s.bookings.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	for i := range expired {
		b := &expired[i]
		if len(b.SlotIDs) > 0 {
			s.invalidateSlots(ctx, b.ServiceID)
			s.publish(ctx, domain.Event{
				Kind:      domain.EventSlotsUpdated,
				ServiceID: b.ServiceID,
				SlotIDs:   b.SlotIDs,
				Status:    string(domain.SlotStatusAvailable),
			})
		}
		s.publishStatusChanged(ctx, b)
	}
	return expired, nil
}

func (s *BookingService) publishStatusChanged(ctx context.Context, b *domain.Booking) {
	s.publish(ctx, domain.Event{
		Kind:      domain.EventBookingStatusChanged,
		Recipient: b.CustomerID,
		BookingID: b.ID,
		ServiceID: b.ServiceID,
		Status:    string(b.Status),
	})
	if service, err := s.directory.GetService(ctx, b.ServiceID); err == nil {
		s.publish(ctx, domain.Event{
			Kind:      domain.EventBookingStatusChanged,
			Recipient: service.VendorID,
			BookingID: b.ID,
			ServiceID: b.ServiceID,
			Status:    string(b.Status),
		})
	} else {
		s.logger.Warn("vendor lookup for status event failed",
			zap.String("booking_id", b.ID.String()), zap.Error(err))
	}
}

// publish ships an event after the owning transaction has committed. A
// delivery failure never fails the call; the committed state stands.
func (s *BookingService) publish(ctx context.Context, event domain.Event) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event.At = time.Now()
	key := event.BookingID.String()
	if event.BookingID == uuid.Nil {
		key = event.ServiceID.String()
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, key, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("kind", string(event.Kind)),
			zap.String("key", key),
			zap.Error(err))
	}
}

func (s *BookingService) invalidateSlots(ctx context.Context, serviceID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSlots(ctx, serviceID); err != nil {
		s.logger.Warn("failed to invalidate slot cache",
			zap.String("service_id", serviceID.String()), zap.Error(err))
	}
}

var _ BookingUseCase = (*BookingService)(nil)
