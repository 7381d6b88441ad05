package middleware

import (
	"net/http"
	"time"

	"github.com/hostelhq/hms/internal/auth"
)

// Cookie names shared by the guard and the auth handlers. The access
// cookie carries the short-lived JWT for browser clients that do not set
// an Authorization header; the refresh cookie is the rotation anchor.
const (
	AccessCookie  = "jwt"
	RefreshCookie = "refreshToken"
)

// NewAccessCookie wraps an access token in an httpOnly cookie.
func NewAccessCookie(t auth.Token, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     AccessCookie,
		Value:    t.Value,
		Expires:  t.Exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
	}
}

// NewRefreshCookie wraps a refresh token in an httpOnly, same-site-strict
// cookie. The token also travels in JSON bodies for non-browser clients.
func NewRefreshCookie(t auth.Token, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookie,
		Value:    t.Value,
		Expires:  t.Exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpiredCookie tells the client to drop a cookie.
func ExpiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
	}
}
