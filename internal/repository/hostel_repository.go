package repository

import (
	"context"
	"database/sql"

	"github.com/hostelhq/hms/internal/model"
	"github.com/hostelhq/hms/internal/utils"
)

// HostelRepo persists hostels. Slugs are derived from names here so every
// write path stays consistent.
type HostelRepo struct{ DB *sql.DB }

func NewHostelRepo(db *sql.DB) *HostelRepo { return &HostelRepo{DB: db} }

// Create inserts a hostel and returns its ID. Duplicate names (or the
// slugs they collapse into) yield ErrHostelExists.
func (r *HostelRepo) Create(ctx context.Context, name, address string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO hostels (name, slug, address) VALUES (?,?,?)",
		name, utils.Slugify(name), address)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrHostelExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a hostel with its room count.
func (r *HostelRepo) GetByID(ctx context.Context, id uint64) (model.Hostel, error) {
	var h model.Hostel
	err := r.DB.QueryRowContext(ctx,
		`SELECT h.id, h.name, h.slug, h.address, h.created_at,
			(SELECT COUNT(*) FROM rooms ro WHERE ro.hostel_id = h.id)
		 FROM hostels h WHERE h.id=? LIMIT 1`,
		id).Scan(&h.ID, &h.Name, &h.Slug, &h.Address, &h.CreatedAt, &h.RoomCount)
	if err == sql.ErrNoRows {
		return model.Hostel{}, ErrHostelNotFound
	}
	return h, err
}

// List returns all hostels with room counts, oldest first.
func (r *HostelRepo) List(ctx context.Context) ([]model.Hostel, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT h.id, h.name, h.slug, h.address, h.created_at,
			(SELECT COUNT(*) FROM rooms ro WHERE ro.hostel_id = h.id)
		 FROM hostels h ORDER BY h.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hostels []model.Hostel
	for rows.Next() {
		var h model.Hostel
		if err := rows.Scan(&h.ID, &h.Name, &h.Slug, &h.Address, &h.CreatedAt, &h.RoomCount); err != nil {
			return nil, err
		}
		hostels = append(hostels, h)
	}
	return hostels, rows.Err()
}

// Update changes name and/or address; a renamed hostel is re-slugged.
// Empty arguments leave the column untouched.
func (r *HostelRepo) Update(ctx context.Context, id uint64, name, address string) (model.Hostel, error) {
	if name != "" {
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE hostels SET name=?, slug=? WHERE id=?",
			name, utils.Slugify(name), id); err != nil {
			if isDuplicate(err) {
				return model.Hostel{}, ErrHostelExists
			}
			return model.Hostel{}, err
		}
	}
	if address != "" {
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE hostels SET address=? WHERE id=?", address, id); err != nil {
			return model.Hostel{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a hostel. ErrHostelNotFound when no row matched.
func (r *HostelRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM hostels WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHostelNotFound
	}
	return nil
}
