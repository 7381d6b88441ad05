// Package apperror defines the application error taxonomy and the global
// echo error handler. Handlers return *Error values instead of writing
// failure responses themselves; the handler renders a uniform
// {"status","message"} payload and never leaks internals to the client.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error is a caller-visible failure with an HTTP status and message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with an arbitrary status.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }
func Unprocessable(message string) *Error {
	return New(http.StatusUnprocessableEntity, message)
}
func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// statusWord matches the payload convention: 4xx failures are the
// client's fault ("fail"), everything else is "error".
func statusWord(status int) string {
	if status >= 400 && status < 500 {
		return "fail"
	}
	return "error"
}

// EchoHandler renders every error that escapes a handler. Known *Error
// values keep their status and message; echo's own 404 for unmatched
// routes gets the application's phrasing; anything unrecognized becomes a
// generic 500 so stack traces and driver errors never reach the client.
func EchoHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Something went very wrong!"

	var appErr *Error
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		message = appErr.Message
	case errors.As(err, &echoErr):
		status = echoErr.Code
		if status == http.StatusNotFound {
			message = fmt.Sprintf("Can't find %s on this server!", c.Request().URL.Path)
		} else if s, ok := echoErr.Message.(string); ok {
			message = s
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"status": statusWord(status), "message": message})
}
