package model

import "time"

// Hostel mirrors the `hostels` table. Slug is derived from the name on
// create and regenerated whenever the name changes.
type Hostel struct {
	ID        uint64
	Name      string
	Slug      string
	Address   string
	RoomCount int // populated on listings, not a column
	CreatedAt time.Time
}
