package domain

import "time"

// Store represents a retail store under field auditing.
type Store struct {
	ID           string
	Code         string
	Name         string
	Status       Status
	FailedReason string
	Latitude     *float64
	Longitude    *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StoreDetail bundles a store with its full audit history, each audit
// embedding its images. Consumed by the daily capture gate and by the
// post-capture refresh.
type StoreDetail struct {
	Store  Store
	Audits []Audit
}
