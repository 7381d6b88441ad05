package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/hostelhq/hms/internal/model"
)

func idContext(req *http.Request, rec *httptest.ResponseRecorder, id string) echo.Context {
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestGetAllUsersSplitsByActive(t *testing.T) {
	users := newFakeUserStore()
	users.add(model.User{Email: "a@example.com", Role: model.RoleUser, Active: true})
	users.add(model.User{Email: "b@example.com", Role: model.RoleUser, Active: false})
	h := NewAdminHandler(users)

	req, rec := jsonRequest(http.MethodGet, "/api/admin/getAllUsers", "")
	require.NoError(t, h.GetAllUsers(newContext(req, rec)))
	body := decodeBody(t, rec)
	require.Equal(t, float64(1), body["results"])

	req, rec = jsonRequest(http.MethodGet, "/api/admin/getInactiveUsers", "")
	require.NoError(t, h.GetInactiveUsers(newContext(req, rec)))
	body = decodeBody(t, rec)
	require.Equal(t, float64(1), body["results"])
}

func TestGetAllUsersEmpty(t *testing.T) {
	h := NewAdminHandler(newFakeUserStore())

	req, rec := jsonRequest(http.MethodGet, "/api/admin/getAllUsers", "")
	err := h.GetAllUsers(newContext(req, rec))
	requireAppError(t, err, http.StatusNotFound, "No users found.")

	req, rec = jsonRequest(http.MethodGet, "/api/admin/getInactiveUsers", "")
	err = h.GetInactiveUsers(newContext(req, rec))
	requireAppError(t, err, http.StatusNotFound, "No inactive users found.")
}

func TestGetUserNotFound(t *testing.T) {
	h := NewAdminHandler(newFakeUserStore())

	req, rec := jsonRequest(http.MethodGet, "/api/admin/getUser/99", "")
	err := h.GetUser(idContext(req, rec, "99"))
	requireAppError(t, err, http.StatusNotFound, "No user found with the provided ID.")
}

func TestUpdateUserRejectsUnknownFields(t *testing.T) {
	users := newFakeUserStore()
	u := users.add(model.User{Email: "a@example.com", Role: model.RoleUser, Active: true})
	h := NewAdminHandler(users)

	req, rec := jsonRequest(http.MethodPatch, "/api/admin/updateUser/1",
		`{"email":"hacked@example.com","role":"administrator"}`)
	err := h.UpdateUser(idContext(req, rec, "1"))
	requireAppError(t, err, http.StatusForbidden,
		"You are not allowed to update the following fields: email")

	// Nothing changed.
	stored, err2 := users.GetByID(t.Context(), u.ID)
	require.NoError(t, err2)
	require.Equal(t, model.RoleUser, stored.Role)
}

func TestUpdateUserEmptyBody(t *testing.T) {
	users := newFakeUserStore()
	users.add(model.User{Email: "a@example.com", Role: model.RoleUser, Active: true})
	h := NewAdminHandler(users)

	req, rec := jsonRequest(http.MethodPatch, "/api/admin/updateUser/1", `{}`)
	err := h.UpdateUser(idContext(req, rec, "1"))
	requireAppError(t, err, http.StatusBadRequest, "Please provide at least one field to update!")
}

func TestUpdateUserChangesAllowedFields(t *testing.T) {
	users := newFakeUserStore()
	u := users.add(model.User{Email: "a@example.com", Role: model.RoleUser, Active: true})
	h := NewAdminHandler(users)

	req, rec := jsonRequest(http.MethodPatch, "/api/admin/updateUser/1",
		`{"role":"hall admin","emailVerified":true}`)
	require.NoError(t, h.UpdateUser(idContext(req, rec, "1")))

	stored, err := users.GetByID(t.Context(), u.ID)
	require.NoError(t, err)
	require.Equal(t, model.RoleHallAdmin, stored.Role)
	require.True(t, stored.EmailVerified)
}

func TestUpdateUserBadRole(t *testing.T) {
	users := newFakeUserStore()
	users.add(model.User{Email: "a@example.com", Role: model.RoleUser, Active: true})
	h := NewAdminHandler(users)

	req, rec := jsonRequest(http.MethodPatch, "/api/admin/updateUser/1", `{"role":"overlord"}`)
	err := h.UpdateUser(idContext(req, rec, "1"))
	requireAppError(t, err, http.StatusBadRequest,
		"Role must be one of: user, hall admin, portal manager, administrator")
}

func TestDisableEnableUser(t *testing.T) {
	users := newFakeUserStore()
	u := users.add(model.User{Email: "a@example.com", Role: model.RoleUser, Active: true})
	h := NewAdminHandler(users)

	req, rec := jsonRequest(http.MethodPatch, "/api/admin/disableUser/1", "")
	require.NoError(t, h.DisableUser(idContext(req, rec, "1")))
	require.Equal(t, "User disabled successfully.", decodeBody(t, rec)["message"])

	stored, _ := users.GetByID(t.Context(), u.ID)
	require.False(t, stored.Active)

	req, rec = jsonRequest(http.MethodPatch, "/api/admin/enableUser/1", "")
	require.NoError(t, h.EnableUser(idContext(req, rec, "1")))
	require.Equal(t, "User enabled successfully.", decodeBody(t, rec)["message"])

	stored, _ = users.GetByID(t.Context(), u.ID)
	require.True(t, stored.Active)
}

func TestDeleteUser(t *testing.T) {
	users := newFakeUserStore()
	users.add(model.User{Email: "a@example.com", Role: model.RoleUser, Active: true})
	h := NewAdminHandler(users)

	req, rec := jsonRequest(http.MethodDelete, "/api/admin/deleteUser/1", "")
	require.NoError(t, h.DeleteUser(idContext(req, rec, "1")))
	require.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = jsonRequest(http.MethodDelete, "/api/admin/deleteUser/1", "")
	err := h.DeleteUser(idContext(req, rec, "1"))
	requireAppError(t, err, http.StatusNotFound, "No user found with the provided ID.")
}

func TestDeleteAllUsers(t *testing.T) {
	users := newFakeUserStore()
	users.add(model.User{Email: "a@example.com", Active: true})
	users.add(model.User{Email: "b@example.com", Active: false})
	h := NewAdminHandler(users)

	req, rec := jsonRequest(http.MethodDelete, "/api/admin/deleteAllUsers", "")
	require.NoError(t, h.DeleteAllUsers(newContext(req, rec)))
	require.Equal(t, "2 users deleted successfully.", decodeBody(t, rec)["message"])
}
