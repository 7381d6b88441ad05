package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hostelhq/hms/internal/apperror"
	"github.com/hostelhq/hms/internal/model"
	"github.com/hostelhq/hms/internal/repository"
)

// AdminHandler serves the administrator-only user management routes.
type AdminHandler struct {
	Users UserStore
}

func NewAdminHandler(users UserStore) *AdminHandler {
	return &AdminHandler{Users: users}
}

// Fields an admin may change on a user. Everything else in the request
// body is rejected by name so a typo never silently does nothing.
var adminUpdatableFields = map[string]bool{
	"emailVerified": true,
	"active":        true,
	"role":          true,
}

func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("Invalid user id!")
	}
	return id, nil
}

// GetAllUsers lists active users.
func (h *AdminHandler) GetAllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.ListByActive(ctx, true)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return apperror.NotFound("No users found.")
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(out),
		"data":    echo.Map{"users": out},
	})
}

// GetInactiveUsers lists soft-disabled users.
func (h *AdminHandler) GetInactiveUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.ListByActive(ctx, false)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return apperror.NotFound("No inactive users found.")
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(out),
		"data":    echo.Map{"users": out},
	})
}

// GetUser fetches a single user by ID.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("No user found with the provided ID.")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"user": toUserResponse(u)},
	})
}

// UpdateUser patches the admin-updatable fields of a user. The body is
// decoded into a map so unknown keys can be named in the rejection.
// Echo's binder also merges path params into a map target, which would
// make the ":id" param look like a disallowed field, so decode the raw
// body directly instead.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var body map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return apperror.BadRequest("Invalid request body!")
	}
	if len(body) == 0 {
		return apperror.BadRequest("Please provide at least one field to update!")
	}

	var disallowed []string
	for k := range body {
		if !adminUpdatableFields[k] {
			disallowed = append(disallowed, k)
		}
	}
	if len(disallowed) > 0 {
		sort.Strings(disallowed)
		return apperror.Forbidden(fmt.Sprintf(
			"You are not allowed to update the following fields: %s",
			strings.Join(disallowed, ", ")))
	}

	var emailVerified, active *bool
	var role *string
	if v, ok := body["emailVerified"]; ok {
		b, ok := v.(bool)
		if !ok {
			return apperror.BadRequest("emailVerified must be a boolean!")
		}
		emailVerified = &b
	}
	if v, ok := body["active"]; ok {
		b, ok := v.(bool)
		if !ok {
			return apperror.BadRequest("active must be a boolean!")
		}
		active = &b
	}
	if v, ok := body["role"]; ok {
		s, ok := v.(string)
		if !ok || !model.ValidRole(s) {
			return apperror.BadRequest("Role must be one of: user, hall admin, portal manager, administrator")
		}
		role = &s
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateAdminFields(ctx, id, emailVerified, active, role)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("No user found with the provided ID.")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"user": toUserResponse(u)},
	})
}

// DisableUser soft-disables an account.
func (h *AdminHandler) DisableUser(c echo.Context) error {
	return h.setActive(c, false, "User disabled successfully.")
}

// EnableUser reactivates a soft-disabled account.
func (h *AdminHandler) EnableUser(c echo.Context) error {
	return h.setActive(c, true, "User enabled successfully.")
}

func (h *AdminHandler) setActive(c echo.Context, active bool, msg string) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("No user found with the provided ID.")
		}
		return err
	}
	if err := h.Users.SetActive(ctx, id, active); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": msg,
	})
}

// DeleteUser removes a user row for real.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("No user found with the provided ID.")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAllUsers wipes the users table and reports the count.
func (h *AdminHandler) DeleteAllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Users.DeleteAll(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": fmt.Sprintf("%d users deleted successfully.", n),
	})
}
