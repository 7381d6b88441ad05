package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hostelhq/hms/internal/apperror"
	"github.com/hostelhq/hms/internal/middleware"
	"github.com/hostelhq/hms/internal/model"
	"github.com/hostelhq/hms/internal/repository"
)

// RoomHandler serves the room CRUD and occupancy routes.
type RoomHandler struct {
	Rooms   RoomAdminStore
	Hostels HostelStore
}

func NewRoomHandler(rooms RoomAdminStore, hostels HostelStore) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Hostels: hostels}
}

type roomReq struct {
	Number   string `json:"number"`
	Capacity int    `json:"capacity"`
	HostelID uint64 `json:"hostelId"`
}

type roomsBulkReq struct {
	HostelID uint64    `json:"hostelId"`
	Rooms    []roomReq `json:"rooms"`
}

type roomResponse struct {
	ID          uint64 `json:"id"`
	Number      string `json:"number"`
	Status      string `json:"status"`
	Capacity    int    `json:"capacity"`
	HostelID    uint64 `json:"hostelId"`
	Hostel      string `json:"hostel,omitempty"`
	HostelSlug  string `json:"hostelSlug,omitempty"`
	TenantCount int    `json:"tenantCount"`
}

func toRoomResponse(r model.Room) roomResponse {
	return roomResponse{
		ID:          r.ID,
		Number:      r.Number,
		Status:      r.Status,
		Capacity:    r.Capacity,
		HostelID:    r.HostelID,
		Hostel:      r.HostelName,
		HostelSlug:  r.HostelSlug,
		TenantCount: r.TenantCount,
	}
}

func roomID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("Invalid room id!")
	}
	return id, nil
}

func (h *RoomHandler) hostelExists(ctx context.Context, id uint64) error {
	if _, err := h.Hostels.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHostelNotFound) {
			return apperror.NotFound("Hostel not found")
		}
		return err
	}
	return nil
}

// Create adds one room to a hostel.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}
	number := strings.TrimSpace(req.Number)
	if number == "" || req.Capacity == 0 || req.HostelID == 0 {
		return apperror.BadRequest("Number, capacity and hostelId are required to create a room!")
	}
	if !model.ValidCapacity(req.Capacity) {
		return apperror.BadRequest("Room capacity must be either 4 or 6!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.hostelExists(ctx, req.HostelID); err != nil {
		return err
	}

	id, err := h.Rooms.Create(ctx, number, req.Capacity, req.HostelID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomExists) {
			return apperror.Conflict("A room with this number already exists in the hostel!")
		}
		return err
	}
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "success",
		"message": "Room created successfully!",
		"data":    echo.Map{"room": toRoomResponse(room)},
	})
}

// CreateMultipleRooms adds a batch of rooms to one hostel in a single
// transaction; one bad room rolls back the whole batch.
func (h *RoomHandler) CreateMultipleRooms(c echo.Context) error {
	var req roomsBulkReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}
	if len(req.Rooms) == 0 {
		return apperror.BadRequest("Please provide an array of rooms to create")
	}
	if req.HostelID == 0 {
		return apperror.BadRequest("Number, capacity and hostelId are required to create a room!")
	}

	rooms := make([]model.Room, 0, len(req.Rooms))
	for _, r := range req.Rooms {
		number := strings.TrimSpace(r.Number)
		if number == "" || r.Capacity == 0 {
			return apperror.BadRequest("Number, capacity and hostelId are required to create a room!")
		}
		if !model.ValidCapacity(r.Capacity) {
			return apperror.BadRequest("Room capacity must be either 4 or 6!")
		}
		rooms = append(rooms, model.Room{Number: number, Capacity: r.Capacity})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.hostelExists(ctx, req.HostelID); err != nil {
		return err
	}
	if err := h.Rooms.CreateBulk(ctx, rooms, req.HostelID); err != nil {
		if errors.Is(err, repository.ErrRoomExists) {
			return apperror.Conflict("A room with this number already exists in the hostel!")
		}
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "success",
		"message": "Rooms created successfully!",
		"results": len(rooms),
	})
}

// GetAll lists every room with its hostel name and slug attached.
func (h *RoomHandler) GetAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		return apperror.NotFound("No Rooms Found, Try creating..")
	}

	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResponse(r))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(out),
		"data":    echo.Map{"rooms": out},
	})
}

// GetByID fetches one room.
func (h *RoomHandler) GetByID(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperror.NotFound("Room not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"room": toRoomResponse(room)},
	})
}

// Update changes a room's number or capacity.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return err
	}

	var req roomReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	current, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperror.NotFound("Room not found")
		}
		return err
	}

	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = current.Number
	}
	capacity := req.Capacity
	if capacity == 0 {
		capacity = current.Capacity
	}
	if !model.ValidCapacity(capacity) {
		return apperror.BadRequest("Room capacity must be either 4 or 6!")
	}
	if capacity < current.TenantCount {
		return apperror.BadRequest("Room capacity cannot be lower than the current tenant count!")
	}

	updated, err := h.Rooms.Update(ctx, id, number, capacity)
	if err != nil {
		if errors.Is(err, repository.ErrRoomExists) {
			return apperror.Conflict("A room with this number already exists in the hostel!")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Room updated successfully",
		"data":    echo.Map{"room": toRoomResponse(updated)},
	})
}

// Delete removes a room and its tenant links.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperror.NotFound("Room not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Room deleted successfully",
	})
}

// AddTenant puts the calling admin into a room, same occupancy rules as
// a regular booking.
func (h *RoomHandler) AddTenant(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthorized("You are not logged in! Please log in to gain access.")
	}
	id, err := roomID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperror.NotFound("Room not found")
		}
		return err
	}
	if room.Status == model.RoomOccupied || room.TenantCount >= room.Capacity {
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

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Tenant added to room successfully!",
		"data":    echo.Map{"room": toRoomResponse(room)},
	})
}

// GetRoomsByHostelID lists the rooms of one hostel.
func (h *RoomHandler) GetRoomsByHostelID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("hostelId"), 10, 64)
	if err != nil || id == 0 {
		return apperror.BadRequest("Invalid hostel id!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.hostelExists(ctx, id); err != nil {
		return err
	}
	rooms, err := h.Rooms.ListByHostel(ctx, id)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		return apperror.NotFound("No Rooms Found, Try creating..")
	}

	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResponse(r))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(out),
		"data":    echo.Map{"rooms": out},
	})
}

// GetRoomStatus reports a room's status and occupancy numbers.
func (h *RoomHandler) GetRoomStatus(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperror.NotFound("Room not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data": echo.Map{
			"roomId":      room.ID,
			"roomStatus":  room.Status,
			"capacity":    room.Capacity,
			"tenantCount": room.TenantCount,
		},
	})
}

// GetOccupants lists the tenants of a room.
func (h *RoomHandler) GetOccupants(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperror.NotFound("Room not found")
		}
		return err
	}
	occupants, err := h.Rooms.Occupants(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(occupants),
		"data":    echo.Map{"occupants": occupants},
	})
}
