package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zvrva/slotbooker/internal/domain"
)

type BookingRepository interface {
	// Create persists the booking, its slot links and its price snapshot,
	// and locks the requested slots, all in one transaction. On any failure
	// nothing is written and no slot changes status.
	Create(ctx context.Context, booking *domain.Booking, snap *domain.PriceSnapshot) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	// UpdateStatus flips the booking from the expected current status to the
	// new one and, when release is set, returns the booking's slots to
	// AVAILABLE in the same transaction. The update is conditional on the
	// current status, so a concurrent transition makes the caller's attempt
	// fail with ErrInvalidTransition instead of silently winning.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus, release bool) (*domain.Booking, error)
	// RecordPayment stores the processor outcome; when activate is set the
	// booking is flipped PENDING->ACTIVE in the same transaction.
	RecordPayment(ctx context.Context, payment *domain.Payment, activate bool) error
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// querier is the subset of pgxpool.Pool and pgx.Tx the read helpers need, so
// a booking can be read back inside the transaction that created it.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, snap *domain.PriceSnapshot) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if len(booking.SlotIDs) > 0 {
		if err := lockSlots(ctx, tx, booking.ServiceID, booking.SlotIDs); err != nil {
			return err
		}
	}

	booking.Status = domain.BookingStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, customer_id, service_id, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		booking.ID, booking.CustomerID, booking.ServiceID, booking.ScheduledAt, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for _, slotID := range booking.SlotIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO booking_slots (booking_id, slot_id) VALUES ($1, $2)`,
			booking.ID, slotID); err != nil {
			return err
		}
	}

	if err := tx.QueryRow(ctx, `INSERT INTO booking_snapshots (booking_id, service_name, unit_price_cents, quantity, total_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		booking.ID, snap.ServiceName, snap.UnitPriceCents, snap.Quantity, snap.TotalCents).
		Scan(&snap.CreatedAt); err != nil {
		return err
	}
	snap.BookingID = booking.ID
	booking.Snapshot = snap

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return getBooking(ctx, r.db, id)
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT b.id, b.customer_id, b.service_id, b.scheduled_at, b.status, b.created_at, b.updated_at
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE ($1::uuid IS NULL OR b.customer_id = $1)
		AND ($2::uuid IS NULL OR s.vendor_id = $2)
		AND ($3::text IS NULL OR b.status = $3)
		ORDER BY b.created_at DESC`, filter.CustomerID, filter.VendorID, filter.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.CustomerID, &b.ServiceID, &b.ScheduledAt, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus, release bool) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE bookings SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`, id, to, from)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		// The row is either gone or no longer in the expected status.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).
			Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrBookingNotFound
		}
		return nil, domain.ErrInvalidTransition
	}

	booking, err := getBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if release {
		if err := releaseSlots(ctx, tx, booking.SlotIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *PGBookingRepository) RecordPayment(ctx context.Context, payment *domain.Payment, activate bool) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO payments (id, booking_id, amount_cents, processor_id, outcome)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		payment.ID, payment.BookingID, payment.AmountCents, payment.ProcessorID, payment.Outcome).
		Scan(&payment.CreatedAt); err != nil {
		return err
	}

	if activate {
		cmd, err := tx.Exec(ctx, `UPDATE bookings SET status = 'ACTIVE', updated_at = now()
			WHERE id = $1 AND status = 'PENDING'`, payment.BookingID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrInvalidTransition
		}
	}

	return tx.Commit(ctx)
}

// ExpirePendingBefore cancels every PENDING booking created at or before the
// cutoff, each in its own transaction so a large backlog does not hold one
// long serializable transaction over active slot rows. A booking that stops
// being PENDING between the candidate read and its own transaction is
// skipped.
func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM bookings
		WHERE status = 'PENDING' AND created_at <= $1
		ORDER BY created_at`, cutoff)
	if err != nil {
		return nil, err
	}
	var candidates []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		candidates = append(candidates, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var expired []domain.Booking
	for _, id := range candidates {
		b, err := r.expireOne(ctx, id, cutoff)
		if err != nil {
			return expired, err
		}
		if b != nil {
			expired = append(expired, *b)
		}
	}
	return expired, nil
}

// expireOne cancels a single PENDING booking and releases its slots in one
// transaction. Returns nil when the booking lost PENDING status meanwhile.
func (r *PGBookingRepository) expireOne(ctx context.Context, id uuid.UUID, cutoff time.Time) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var b domain.Booking
	err = tx.QueryRow(ctx, `UPDATE bookings SET status = 'CANCELLED', updated_at = now()
		WHERE id = $1 AND status = 'PENDING' AND created_at <= $2
		RETURNING id, customer_id, service_id, scheduled_at, status, created_at, updated_at`, id, cutoff).
		Scan(&b.ID, &b.CustomerID, &b.ServiceID, &b.ScheduledAt, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	slotIDs, err := bookingSlotIDs(ctx, tx, b.ID)
	if err != nil {
		return nil, err
	}
	b.SlotIDs = slotIDs
	if err := releaseSlots(ctx, tx, slotIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}

func getBooking(ctx context.Context, q querier, id uuid.UUID) (*domain.Booking, error) {
	row := q.QueryRow(ctx, `SELECT id, customer_id, service_id, scheduled_at, status, created_at, updated_at
		FROM bookings WHERE id = $1`, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.CustomerID, &b.ServiceID, &b.ScheduledAt, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	slotIDs, err := bookingSlotIDs(ctx, q, id)
	if err != nil {
		return nil, err
	}
	b.SlotIDs = slotIDs

	var snap domain.PriceSnapshot
	err = q.QueryRow(ctx, `SELECT booking_id, service_name, unit_price_cents, quantity, total_cents, created_at
		FROM booking_snapshots WHERE booking_id = $1`, id).
		Scan(&snap.BookingID, &snap.ServiceName, &snap.UnitPriceCents, &snap.Quantity, &snap.TotalCents, &snap.CreatedAt)
	switch {
	case err == nil:
		b.Snapshot = &snap
	case errors.Is(err, pgx.ErrNoRows):
		// legacy bookings without a snapshot
	default:
		return nil, err
	}

	return &b, nil
}

func bookingSlotIDs(ctx context.Context, q querier, bookingID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, `SELECT slot_id FROM booking_slots WHERE booking_id = $1 ORDER BY slot_id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
