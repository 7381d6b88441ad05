package model

import "time"

// Booking statuses.
const (
	BookingActive    = "active"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Booking mirrors the `bookings` table and records a tenant taking a bed
// in a room.
type Booking struct {
	ID        uint64
	RoomID    uint64
	UserID    uint64
	Price     float64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
