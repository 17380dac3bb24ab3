package domain

import "github.com/google/uuid"

// Service is the read-only view of a vendor's service the booking engine
// needs: who owns it and what it currently costs. The full service record
// (categories, media, description) lives outside this system.
type Service struct {
	ID             uuid.UUID
	VendorID       uuid.UUID
	Name           string
	UnitPriceCents int64
}

type User struct {
	ID    uuid.UUID
	Name  string
	Email string
}
