// Package queue defines the booking event payload, its publisher and the
// background consumer that appends confirmed bookings to logs/booking.log.
package queue

// BookingConfirmedEvent is published when a room booking goes through. It
// carries enough context for downstream consumers to log or notify without
// touching the primary database.
type BookingConfirmedEvent struct {
	BookingID   uint64  `json:"booking_id"`
	UserID      uint64  `json:"user_id"`
	UserEmail   string  `json:"user_email"`
	RoomID      uint64  `json:"room_id"`
	RoomNumber  string  `json:"room_number"`
	HostelID    uint64  `json:"hostel_id"`
	HostelName  string  `json:"hostel_name"`
	Capacity    int     `json:"capacity"`
	TenantCount int     `json:"tenant_count"`
	Price       float64 `json:"price"`
	BookedAt    string  `json:"booked_at"`
}
