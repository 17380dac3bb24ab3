package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zvrva/slotbooker/internal/domain"
)

// DirectoryRepository is the read-only view of the user/service directory the
// booking engine depends on. The directory itself is maintained elsewhere.
type DirectoryRepository interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error)
}

type PGDirectoryRepository struct {
	db *pgxpool.Pool
}

func NewDirectoryRepository(db *pgxpool.Pool) DirectoryRepository {
	return &PGDirectoryRepository{db: db}
}

func (r *PGDirectoryRepository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGDirectoryRepository) GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	row := r.db.QueryRow(ctx, `SELECT id, vendor_id, name, unit_price_cents FROM services WHERE id = $1`, id)
	var s domain.Service
	if err := row.Scan(&s.ID, &s.VendorID, &s.Name, &s.UnitPriceCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

var _ DirectoryRepository = (*PGDirectoryRepository)(nil)
