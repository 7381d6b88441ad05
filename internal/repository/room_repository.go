package repository

import (
	"context"
	"database/sql"

	"github.com/hostelhq/hms/internal/model"
)

const roomSelect = `SELECT ro.id, ro.number, ro.status, ro.capacity, ro.hostel_id,
	h.name, h.slug,
	(SELECT COUNT(*) FROM room_tenants rt WHERE rt.room_id = ro.id)
 FROM rooms ro JOIN hostels h ON h.id = ro.hostel_id`

// RoomRepo persists rooms and their tenant assignments.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

func scanRoom(row *sql.Row) (model.Room, error) {
	var ro model.Room
	err := row.Scan(&ro.ID, &ro.Number, &ro.Status, &ro.Capacity, &ro.HostelID,
		&ro.HostelName, &ro.HostelSlug, &ro.TenantCount)
	if err == sql.ErrNoRows {
		return model.Room{}, ErrRoomNotFound
	}
	return ro, err
}

// Create inserts a room. Duplicate numbers yield ErrRoomExists.
func (r *RoomRepo) Create(ctx context.Context, number string, capacity int, hostelID uint64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO rooms (number, status, capacity, hostel_id) VALUES (?,?,?,?)",
		number, model.RoomAvailable, capacity, hostelID)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrRoomExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateBulk inserts several rooms for one hostel in a single transaction
// so a duplicate in the middle of the batch leaves nothing behind.
func (r *RoomRepo) CreateBulk(ctx context.Context, rooms []model.Room, hostelID uint64) error {
	if len(rooms) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, ro := range rooms {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO rooms (number, status, capacity, hostel_id) VALUES (?,?,?,?)",
			ro.Number, model.RoomAvailable, ro.Capacity, hostelID); err != nil {
			_ = tx.Rollback()
			if isDuplicate(err) {
				return ErrRoomExists
			}
			return err
		}
	}
	return tx.Commit()
}

// GetByID fetches a room with its hostel name/slug and tenant count.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	return scanRoom(r.DB.QueryRowContext(ctx, roomSelect+" WHERE ro.id=? LIMIT 1", id))
}

// List returns every room, hostel slug attached.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	return r.queryRooms(ctx, roomSelect+" ORDER BY ro.id")
}

// ListByHostel returns the rooms of one hostel.
func (r *RoomRepo) ListByHostel(ctx context.Context, hostelID uint64) ([]model.Room, error) {
	return r.queryRooms(ctx, roomSelect+" WHERE ro.hostel_id=? ORDER BY ro.id", hostelID)
}

func (r *RoomRepo) queryRooms(ctx context.Context, query string, args ...interface{}) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var ro model.Room
		if err := rows.Scan(&ro.ID, &ro.Number, &ro.Status, &ro.Capacity, &ro.HostelID,
			&ro.HostelName, &ro.HostelSlug, &ro.TenantCount); err != nil {
			return nil, err
		}
		rooms = append(rooms, ro)
	}
	return rooms, rows.Err()
}

// Update changes number and/or capacity. Zero values leave the column
// untouched.
func (r *RoomRepo) Update(ctx context.Context, id uint64, number string, capacity int) (model.Room, error) {
	if number != "" {
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE rooms SET number=? WHERE id=?", number, id); err != nil {
			if isDuplicate(err) {
				return model.Room{}, ErrRoomExists
			}
			return model.Room{}, err
		}
	}
	if capacity != 0 {
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE rooms SET capacity=? WHERE id=?", capacity, id); err != nil {
			return model.Room{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a room and its tenant assignments.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM room_tenants WHERE room_id=?", id); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// AddTenant assigns a user to a room.
func (r *RoomRepo) AddTenant(ctx context.Context, roomID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO room_tenants (room_id, user_id) VALUES (?,?)", roomID, userID)
	return err
}

// SetStatus updates a room's occupancy status.
func (r *RoomRepo) SetStatus(ctx context.Context, roomID uint64, status string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE rooms SET status=? WHERE id=?", status, roomID)
	return err
}

// Occupants lists the tenants of a room with just the fields the
// occupants endpoint exposes.
func (r *RoomRepo) Occupants(ctx context.Context, roomID uint64) ([]model.Occupant, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.first_name, u.last_name, u.email
		 FROM room_tenants rt JOIN users u ON u.id = rt.user_id
		 WHERE rt.room_id=? ORDER BY u.id`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occupants []model.Occupant
	for rows.Next() {
		var o model.Occupant
		if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Email); err != nil {
			return nil, err
		}
		occupants = append(occupants, o)
	}
	return occupants, rows.Err()
}
