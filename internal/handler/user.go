package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hostelhq/hms/internal/apperror"
	"github.com/hostelhq/hms/internal/middleware"
	"github.com/hostelhq/hms/internal/model"
	"github.com/hostelhq/hms/internal/queue"
	"github.com/hostelhq/hms/internal/repository"
)

// BookingPublisher pushes booking events to the broker. Publishing is
// best-effort; the handler logs failures and keeps going.
type BookingPublisher interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// UserHandler serves the self-service routes of a logged-in user.
type UserHandler struct {
	Users    UserStore
	Rooms    RoomStore
	Bookings BookingStore
	Events   BookingPublisher
}

func NewUserHandler(users UserStore, rooms RoomStore, bookings BookingStore, events BookingPublisher) *UserHandler {
	return &UserHandler{Users: users, Rooms: rooms, Bookings: bookings, Events: events}
}

type updateMeReq struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type bookRoomReq struct {
	RoomID uint64  `json:"roomId"`
	Price  float64 `json:"price"`
}

// Me returns the logged-in user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthorized("You are not logged in! Please log in to gain access.")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"user": toUserResponse(u)},
	})
}

// UpdateMe updates the profile fields of the logged-in user. Password
// fields are rejected here; the dedicated password route stamps the
// invalidation watermark that this route must not touch.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthorized("You are not logged in! Please log in to gain access.")
	}

	var req updateMeReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}
	if req.Password != "" || req.PasswordConfirm != "" {
		return apperror.BadRequest("This route is not for password updates. Please use /updateMyPassword")
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if firstName == "" {
		firstName = u.FirstName
	}
	if lastName == "" {
		lastName = u.LastName
	}
	if emailAddr == "" {
		emailAddr = u.Email
	}

	if !validName(firstName) {
		return apperror.Unauthorized("Invalid first name!")
	}
	if !validName(lastName) {
		return apperror.Unauthorized("Invalid last name!")
	}
	if !validEmail(emailAddr) {
		return apperror.Unauthorized("Invalid email format!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	updated, err := h.Users.UpdateProfile(ctx, u.ID, firstName, lastName, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperror.Unauthorized("User with this email address already exists!")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"user": toUserResponse(updated)},
	})
}

// DisableMe soft-disables the account and reports it in the body.
func (h *UserHandler) DisableMe(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthorized("You are not logged in! Please log in to gain access.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Users.SetActive(ctx, u.ID, false); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Account Disabled successfully!",
	})
}

// DeleteMe soft-disables the account and answers 204. The row stays; only
// the active flag flips, so an admin can bring the account back.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthorized("You are not logged in! Please log in to gain access.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Users.SetActive(ctx, u.ID, false); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// BookRoom puts the logged-in user into a room. The room must exist, be
// available and have headroom; hitting capacity flips it to occupied. A
// booking row is written and a confirmation event published best-effort.
func (h *UserHandler) BookRoom(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthorized("You are not logged in! Please log in to gain access.")
	}

	var req bookRoomReq
	if err := c.Bind(&req); err != nil || req.RoomID == 0 {
		return apperror.BadRequest("Please provide a room id!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperror.NotFound("Room not found")
		}
		return err
	}
	if room.Status == model.RoomOccupied {
		return apperror.BadRequest("Room is already occupied")
	}
	if room.TenantCount >= room.Capacity {
		return apperror.BadRequest("Room has reached its maximum capacity")
	}

	if err := h.Rooms.AddTenant(ctx, room.ID, u.ID); err != nil {
		return err
	}
	room.TenantCount++
	if room.TenantCount >= room.Capacity {
		if err := h.Rooms.SetStatus(ctx, room.ID, model.RoomOccupied); err != nil {
			return err
		}
		room.Status = model.RoomOccupied
	}

	bookingID, err := h.Bookings.Create(ctx, room.ID, u.ID, req.Price)
	if err != nil {
		return err
	}

	if h.Events != nil {
		ev := queue.BookingConfirmedEvent{
			BookingID:   bookingID,
			UserID:      u.ID,
			UserEmail:   u.Email,
			RoomID:      room.ID,
			RoomNumber:  room.Number,
			HostelID:    room.HostelID,
			HostelName:  room.HostelName,
			Capacity:    room.Capacity,
			TenantCount: room.TenantCount,
			Price:       req.Price,
			BookedAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Events.BookingConfirmed(ctx, ev); err != nil {
			log.Printf("bookRoom: publish booking event failed: %v", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "success",
		"message": "Room booked successfully!",
		"data": echo.Map{
			"bookingId": bookingID,
			"room": echo.Map{
				"id":          room.ID,
				"number":      room.Number,
				"status":      room.Status,
				"capacity":    room.Capacity,
				"tenantCount": room.TenantCount,
				"hostel":      room.HostelName,
			},
		},
	})
}
