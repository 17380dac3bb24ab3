package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zvrva/slotbooker/internal/domain"
)

type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) error
	ListByService(ctx context.Context, serviceID uuid.UUID, from, to *time.Time) ([]domain.Slot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PGSlotRepository struct {
	db *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) SlotRepository {
	return &PGSlotRepository{db: db}
}

const slotColumns = `id, service_id, start_at, end_at, status, is_recurring, created_at, updated_at`

// Create inserts a slot after checking it does not intersect any non-deleted
// slot of the same service. Touching boundaries count as an intersection.
// Check and insert run in one transaction so two concurrent creates cannot
// both pass the check.
func (r *PGSlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var overlaps bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM slots
			WHERE service_id = $1 AND status <> 'DELETED'
			AND start_at <= $3 AND end_at >= $2
		)`, slot.ServiceID, slot.StartAt, slot.EndAt).Scan(&overlaps); err != nil {
		return err
	}
	if overlaps {
		return domain.ErrSlotOverlap
	}

	slot.Status = domain.SlotStatusAvailable
	if err := tx.QueryRow(ctx, `INSERT INTO slots (id, service_id, start_at, end_at, status, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		slot.ID, slot.ServiceID, slot.StartAt, slot.EndAt, slot.Status, slot.IsRecurring).
		Scan(&slot.CreatedAt, &slot.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGSlotRepository) ListByService(ctx context.Context, serviceID uuid.UUID, from, to *time.Time) ([]domain.Slot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+slotColumns+` FROM slots
		WHERE service_id = $1 AND status <> 'DELETED'
		AND ($2::timestamptz IS NULL OR end_at >= $2)
		AND ($3::timestamptz IS NULL OR start_at <= $3)
		ORDER BY start_at`, serviceID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.Slot, 0)
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.ID, &s.ServiceID, &s.StartAt, &s.EndAt, &s.Status, &s.IsRecurring, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *PGSlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	row := r.db.QueryRow(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = $1`, id)
	var s domain.Slot
	if err := row.Scan(&s.ID, &s.ServiceID, &s.StartAt, &s.EndAt, &s.Status, &s.IsRecurring, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Delete tombstones the slot instead of removing the row, so late event
// consumers can still resolve the reference.
func (r *PGSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `UPDATE slots SET status = 'DELETED', updated_at = now()
		WHERE id = $1 AND status <> 'DELETED'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

// lockSlots flips every slot in ids to BOOKED, but only if each one belongs
// to serviceID and is currently AVAILABLE. A short row count means at least
// one slot was taken or foreign; the caller must roll back. The conditional
// UPDATE is the compare-and-set that keeps two concurrent bookings from both
// winning the same slot.
func lockSlots(ctx context.Context, tx pgx.Tx, serviceID uuid.UUID, ids []uuid.UUID) error {
	cmd, err := tx.Exec(ctx, `UPDATE slots SET status = 'BOOKED', updated_at = now()
		WHERE id = ANY($1) AND service_id = $2 AND status = 'AVAILABLE'`, ids, serviceID)
	if err != nil {
		return err
	}
	if int(cmd.RowsAffected()) != len(ids) {
		return domain.ErrSlotUnavailable
	}
	return nil
}

// releaseSlots flips BOOKED slots back to AVAILABLE on cancellation. Deleted
// slots are left alone.
func releaseSlots(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `UPDATE slots SET status = 'AVAILABLE', updated_at = now()
		WHERE id = ANY($1) AND status = 'BOOKED'`, ids)
	if err != nil {
		return fmt.Errorf("release slots: %w", err)
	}
	return nil
}

var _ SlotRepository = (*PGSlotRepository)(nil)
