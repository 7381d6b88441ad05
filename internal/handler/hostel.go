package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hostelhq/hms/internal/apperror"
	"github.com/hostelhq/hms/internal/model"
	"github.com/hostelhq/hms/internal/repository"
)

// HostelHandler serves the hostel CRUD routes. All of them sit behind the
// administrator gate.
type HostelHandler struct {
	Hostels HostelStore
}

func NewHostelHandler(hostels HostelStore) *HostelHandler {
	return &HostelHandler{Hostels: hostels}
}

type hostelReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type hostelResponse struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Address   string `json:"address"`
	RoomCount int    `json:"roomCount"`
}

func toHostelResponse(h model.Hostel) hostelResponse {
	return hostelResponse{
		ID:        h.ID,
		Name:      h.Name,
		Slug:      h.Slug,
		Address:   h.Address,
		RoomCount: h.RoomCount,
	}
}

func hostelID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("Invalid hostel id!")
	}
	return id, nil
}

// Create adds a hostel. The slug is derived from the name and must be
// unique.
func (h *HostelHandler) Create(c echo.Context) error {
	var req hostelReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}
	name := strings.TrimSpace(req.Name)
	address := strings.TrimSpace(req.Address)
	if name == "" || address == "" {
		return apperror.BadRequest("Name & Address are required to create a hostel!")
	}
	if len(name) < 3 {
		return apperror.BadRequest("Hostel name must be at least 3 characters long!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Hostels.Create(ctx, name, address)
	if err != nil {
		if errors.Is(err, repository.ErrHostelExists) {
			return apperror.Conflict("A hostel with this name already exists!")
		}
		return err
	}
	created, err := h.Hostels.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "success",
		"message": "Hostel created successfully!!",
		"data":    echo.Map{"hostel": toHostelResponse(created)},
	})
}

// GetAll lists every hostel with its room count.
func (h *HostelHandler) GetAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hostels, err := h.Hostels.List(ctx)
	if err != nil {
		return err
	}
	out := make([]hostelResponse, 0, len(hostels))
	for _, hs := range hostels {
		out = append(out, toHostelResponse(hs))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(out),
		"data":    echo.Map{"hostels": out},
	})
}

// GetByID fetches a single hostel.
func (h *HostelHandler) GetByID(c echo.Context) error {
	id, err := hostelID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hs, err := h.Hostels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHostelNotFound) {
			return apperror.NotFound("Hostel not found!")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"hostel": toHostelResponse(hs)},
	})
}

// Update renames or re-addresses a hostel; a rename re-derives the slug.
func (h *HostelHandler) Update(c echo.Context) error {
	id, err := hostelID(c)
	if err != nil {
		return err
	}

	var req hostelReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}
	name := strings.TrimSpace(req.Name)
	address := strings.TrimSpace(req.Address)
	if name == "" && address == "" {
		return apperror.BadRequest("Please provide a name or address to update!")
	}
	if name != "" && len(name) < 3 {
		return apperror.BadRequest("Hostel name must be at least 3 characters long!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	current, err := h.Hostels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHostelNotFound) {
			return apperror.NotFound("Hostel not found!")
		}
		return err
	}
	if name == "" {
		name = current.Name
	}
	if address == "" {
		address = current.Address
	}

	updated, err := h.Hostels.Update(ctx, id, name, address)
	if err != nil {
		if errors.Is(err, repository.ErrHostelExists) {
			return apperror.Conflict("A hostel with this name already exists!")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Hostel updated successfully",
		"data":    echo.Map{"hostel": toHostelResponse(updated)},
	})
}

// Delete removes an empty hostel. A hostel that still has rooms cannot go.
func (h *HostelHandler) Delete(c echo.Context) error {
	id, err := hostelID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hs, err := h.Hostels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHostelNotFound) {
			return apperror.NotFound("Hostel not found!")
		}
		return err
	}
	if hs.RoomCount > 0 {
		return apperror.BadRequest("Cannot delete hostel with associated rooms")
	}

	if err := h.Hostels.Delete(ctx, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
