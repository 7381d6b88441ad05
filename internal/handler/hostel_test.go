package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hostelhq/hms/internal/model"
)

func TestCreateHostel(t *testing.T) {
	hostels := newFakeHostelStore()
	h := NewHostelHandler(hostels)

	req, rec := jsonRequest(http.MethodPost, "/api/hostels",
		`{"name":"Unity Hall","address":"1 Campus Road"}`)
	require.NoError(t, h.Create(newContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "Hostel created successfully!!", body["message"])
	hostel := body["data"].(map[string]any)["hostel"].(map[string]any)
	require.Equal(t, "Unity Hall", hostel["name"])
	require.Equal(t, "unity-hall", hostel["slug"])
}

func TestCreateHostelValidation(t *testing.T) {
	cases := []struct {
		name, body, message string
	}{
		{"missing address", `{"name":"Unity Hall"}`, "Name & Address are required to create a hostel!"},
		{"missing name", `{"address":"1 Campus Road"}`, "Name & Address are required to create a hostel!"},
		{"short name", `{"name":"Un","address":"1 Campus Road"}`, "Hostel name must be at least 3 characters long!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHostelHandler(newFakeHostelStore())
			req, rec := jsonRequest(http.MethodPost, "/api/hostels", tc.body)
			err := h.Create(newContext(req, rec))
			requireAppError(t, err, http.StatusBadRequest, tc.message)
		})
	}
}

func TestCreateHostelDuplicateName(t *testing.T) {
	hostels := newFakeHostelStore(model.Hostel{ID: 1, Name: "Unity Hall", Slug: "unity-hall"})
	h := NewHostelHandler(hostels)

	req, rec := jsonRequest(http.MethodPost, "/api/hostels",
		`{"name":"Unity Hall","address":"2 Campus Road"}`)
	err := h.Create(newContext(req, rec))
	requireAppError(t, err, http.StatusConflict, "A hostel with this name already exists!")
}

func TestGetHostelByIDNotFound(t *testing.T) {
	h := NewHostelHandler(newFakeHostelStore())
	req, rec := jsonRequest(http.MethodGet, "/api/hostels/9", "")
	err := h.GetByID(idContext(req, rec, "9"))
	requireAppError(t, err, http.StatusNotFound, "Hostel not found!")
}

func TestUpdateHostel(t *testing.T) {
	hostels := newFakeHostelStore(model.Hostel{ID: 1, Name: "Unity Hall", Slug: "unity-hall", Address: "1 Campus Road"})
	h := NewHostelHandler(hostels)

	req, rec := jsonRequest(http.MethodPatch, "/api/hostels/1", `{"name":"Victory Hall"}`)
	require.NoError(t, h.Update(idContext(req, rec, "1")))

	body := decodeBody(t, rec)
	require.Equal(t, "Hostel updated successfully", body["message"])
	hostel := body["data"].(map[string]any)["hostel"].(map[string]any)
	require.Equal(t, "victory-hall", hostel["slug"])
	// Address untouched.
	require.Equal(t, "1 Campus Road", hostel["address"])
}

func TestDeleteHostelWithRooms(t *testing.T) {
	hostels := newFakeHostelStore(model.Hostel{ID: 1, Name: "Unity Hall", Slug: "unity-hall", RoomCount: 3})
	h := NewHostelHandler(hostels)

	req, rec := jsonRequest(http.MethodDelete, "/api/hostels/1", "")
	err := h.Delete(idContext(req, rec, "1"))
	requireAppError(t, err, http.StatusBadRequest, "Cannot delete hostel with associated rooms")

	// Still there.
	_, err = hostels.GetByID(t.Context(), 1)
	require.NoError(t, err)
}

func TestDeleteEmptyHostel(t *testing.T) {
	hostels := newFakeHostelStore(model.Hostel{ID: 1, Name: "Unity Hall", Slug: "unity-hall"})
	h := NewHostelHandler(hostels)

	req, rec := jsonRequest(http.MethodDelete, "/api/hostels/1", "")
	require.NoError(t, h.Delete(idContext(req, rec, "1")))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := hostels.GetByID(t.Context(), 1)
	require.Error(t, err)
}
