package repository

import (
	"context"
	"database/sql"

	"github.com/hostelhq/hms/internal/model"
)

// BookingRepo records room bookings.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// Create inserts an active booking row and returns its ID.
func (r *BookingRepo) Create(ctx context.Context, roomID, userID uint64, price float64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO bookings (room_id, user_id, price, status) VALUES (?,?,?,?)",
		roomID, userID, price, model.BookingActive)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
