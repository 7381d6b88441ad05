package handler

import (
	"context"
	"time"

	"github.com/hostelhq/hms/internal/model"
)

// The handlers treat persistence as external collaborators behind small
// interfaces. The concrete MySQL repositories satisfy them; tests swap in
// in-memory fakes.

// UserStore is the credential-store contract: user records keyed by id or
// email, with the focused mutations the flows need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, firstName, lastName, email string) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string, changedAt time.Time) error
	SetEmailVerification(ctx context.Context, id uint64, code string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, id uint64) error
	SetPasswordReset(ctx context.Context, id uint64, tokenHash string, expires time.Time) error
	ClearPasswordReset(ctx context.Context, id uint64) error
	SetActive(ctx context.Context, id uint64, active bool) error
	ListByActive(ctx context.Context, active bool) ([]model.User, error)
	UpdateAdminFields(ctx context.Context, id uint64, emailVerified, active *bool, role *string) (model.User, error)
	Delete(ctx context.Context, id uint64) error
	DeleteAll(ctx context.Context) (int64, error)
}

// TokenStore persists refresh tokens verbatim. Store opens a session,
// Replace rotates one in place, Delete revokes.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, token string) error
	Find(ctx context.Context, token string) (uint64, error)
	Replace(ctx context.Context, oldToken, newToken string) error
	Delete(ctx context.Context, token string) error
}

// RoomStore is the slice of the room repository the booking flow needs.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	AddTenant(ctx context.Context, roomID, userID uint64) error
	SetStatus(ctx context.Context, roomID uint64, status string) error
}

// HostelStore backs the hostel CRUD routes.
type HostelStore interface {
	Create(ctx context.Context, name, address string) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Hostel, error)
	List(ctx context.Context) ([]model.Hostel, error)
	Update(ctx context.Context, id uint64, name, address string) (model.Hostel, error)
	Delete(ctx context.Context, id uint64) error
}

// RoomAdminStore extends the booking-facing RoomStore with the
// management operations of the room CRUD routes.
type RoomAdminStore interface {
	RoomStore
	Create(ctx context.Context, number string, capacity int, hostelID uint64) (uint64, error)
	CreateBulk(ctx context.Context, rooms []model.Room, hostelID uint64) error
	List(ctx context.Context) ([]model.Room, error)
	ListByHostel(ctx context.Context, hostelID uint64) ([]model.Room, error)
	Update(ctx context.Context, id uint64, number string, capacity int) (model.Room, error)
	Delete(ctx context.Context, id uint64) error
	Occupants(ctx context.Context, roomID uint64) ([]model.Occupant, error)
}

// BookingStore records bookings.
type BookingStore interface {
	Create(ctx context.Context, roomID, userID uint64, price float64) (uint64, error)
}
