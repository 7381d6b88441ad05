package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hostelhq/hms/internal/apperror"
	"github.com/hostelhq/hms/internal/auth"
	"github.com/hostelhq/hms/internal/model"
	"github.com/hostelhq/hms/internal/repository"
)

// UserStore is the slice of the user repository the guard needs.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore is the slice of the refresh-token repository the guard needs
// for silent refresh.
type TokenStore interface {
	Find(ctx context.Context, token string) (uint64, error)
	Replace(ctx context.Context, oldToken, newToken string) error
}

// Guard authenticates requests and resolves the principal. Secure controls
// the Secure flag on cookies it rewrites during silent refresh.
type Guard struct {
	Issuer *auth.Issuer
	Users  UserStore
	Tokens TokenStore
	Secure bool
}

// principalKey is where Protect stores the resolved user on the echo
// context. Access goes through CurrentUser only.
const principalKey = "hms.principal"

// CurrentUser returns the principal attached by Protect. The boolean is
// false on routes that did not pass through the guard.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(principalKey).(model.User)
	return u, ok
}

// SetPrincipal attaches a user as the request principal without going
// through the guard. Handler tests use it to simulate a logged-in request.
func SetPrincipal(c echo.Context, u model.User) {
	c.Set(principalKey, u)
}

// Protect authenticates each request before the handler runs. The access
// token is taken from the Authorization header first, then from the access
// cookie. When neither is present but a refresh cookie is, the guard
// attempts a silent refresh: verify the refresh token, confirm it is still
// stored, mint a new access token in-line and rotate the stored refresh
// token. Any failure on that path is a hard 401, never an anonymous
// fall-through. The verified user is attached as the request principal.
func (g *Guard) Protect(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		token := bearerToken(c)
		if token == "" {
			if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
				token = ck.Value
			}
		}

		if token == "" {
			if ck, err := c.Cookie(RefreshCookie); err == nil && ck.Value != "" {
				minted, err := g.silentRefresh(c, ck.Value)
				if err != nil {
					return err
				}
				token = minted
			}
		}

		if token == "" {
			return apperror.Unauthorized("You are not logged in! Please log in to gain access.")
		}

		claims, err := g.Issuer.ParseAccess(token)
		if err != nil {
			return apperror.Unauthorized("Invalid or expired token. Please log in again.")
		}

		u, err := g.Users.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return apperror.Unauthorized("The user belonging to this token no longer exists.")
			}
			return err
		}

		if u.PasswordChangedAfter(claims.IssuedAt) {
			return apperror.Unauthorized("User recently changed password! Please log in again.")
		}

		c.Set(principalKey, u)
		return next(c)
	}
}

// silentRefresh exchanges a valid stored refresh token for a fresh access
// token, rotating the stored refresh token and its cookie along the way.
func (g *Guard) silentRefresh(c echo.Context, refresh string) (string, error) {
	ctx := c.Request().Context()
	unauthorized := apperror.Unauthorized("Invalid or expired refresh token. Please log in again.")

	claims, err := g.Issuer.ParseRefresh(refresh)
	if err != nil {
		return "", unauthorized
	}
	if _, err := g.Tokens.Find(ctx, refresh); err != nil {
		return "", unauthorized
	}
	if _, err := g.Users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperror.Unauthorized("The user belonging to this refresh token no longer exists.")
		}
		return "", err
	}

	access, err := g.Issuer.NewAccessToken(claims.UserID)
	if err != nil {
		return "", err
	}
	rotated, err := g.Issuer.NewRefreshToken(claims.UserID)
	if err != nil {
		return "", err
	}
	if err := g.Tokens.Replace(ctx, refresh, rotated.Value); err != nil {
		// Lost a rotation race or revoked in between; treat as invalid.
		return "", unauthorized
	}
	c.SetCookie(NewRefreshCookie(rotated, g.Secure))
	c.SetCookie(NewAccessCookie(access, g.Secure))
	return access.Value, nil
}

// RequireRole gates a route on the principal's role. It must run after
// Protect.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || !allowed[u.Role] {
				return apperror.Forbidden("You do not have access to perform this action!!")
			}
			return next(c)
		}
	}
}

// RequireVerified rejects principals that have not verified their email.
// It must run after Protect.
func RequireVerified(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, ok := CurrentUser(c)
		if !ok || !u.EmailVerified {
			return apperror.Forbidden("Please verify your email to access this route.")
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
