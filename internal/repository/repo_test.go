package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewSlotRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewSlotRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewDirectoryRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewDirectoryRepository(pool)
	assert.NotNil(t, repo)
}
