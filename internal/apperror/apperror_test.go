package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	EchoHandler(err, c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestEchoHandlerRendersAppErrors(t *testing.T) {
	code, body := render(t, Unauthorized("Incorrect email or password"), "/api/users/login")
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "fail", body["status"])
	require.Equal(t, "Incorrect email or password", body["message"])
}

func TestEchoHandlerStatusWord(t *testing.T) {
	code, body := render(t, Internal("Something went very wrong!"), "/")
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "error", body["status"])
}

func TestEchoHandlerUnmatchedRoute(t *testing.T) {
	code, body := render(t, echo.NewHTTPError(http.StatusNotFound), "/api/nope")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Can't find /api/nope on this server!", body["message"])
}

func TestEchoHandlerHidesUnknownErrors(t *testing.T) {
	code, body := render(t, errors.New("sql: driver broke"), "/")
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "Something went very wrong!", body["message"])
	require.NotContains(t, body["message"], "sql")
}
