package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hostelhq/hms/internal/apperror"
	"github.com/hostelhq/hms/internal/auth"
	"github.com/hostelhq/hms/internal/config"
	"github.com/hostelhq/hms/internal/email"
	"github.com/hostelhq/hms/internal/middleware"
	"github.com/hostelhq/hms/internal/model"
	"github.com/hostelhq/hms/internal/repository"
)

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the authentication, session and
// password/verification endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Issuer *auth.Issuer
	Users  UserStore
	Tokens TokenStore
	Mail   email.Sender
}

func NewAuthHandler(cfg config.Config, issuer *auth.Issuer, users UserStore, tokens TokenStore, mail email.Sender) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Issuer: issuer, Users: users, Tokens: tokens, Mail: mail}
}

// ----- DTOs -----

type signUpReq struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Role            string `json:"role"` // only honored by CreateAdmin
}

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// userResponse is the wire shape of a user; the password hash and the
// one-time-code columns never leave the server.
type userResponse struct {
	ID            uint64    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		Active:        u.Active,
		CreatedAt:     u.CreatedAt,
	}
}

// sendTokens opens a fresh session for the user: it issues an access and
// a refresh token, stores the refresh token verbatim as a new rotation
// chain, sets both cookies and writes the token response.
func (h *AuthHandler) sendTokens(c echo.Context, u model.User, status int) error {
	access, err := h.Issuer.NewAccessToken(u.ID)
	if err != nil {
		return apperror.Internal("Failed to issue access token!")
	}
	refresh, err := h.Issuer.NewRefreshToken(u.ID)
	if err != nil {
		return apperror.Internal("Failed to issue refresh token!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Tokens.Store(ctx, u.ID, refresh.Value); err != nil {
		return apperror.Internal("Failed to save session!")
	}

	secure := h.secureCookies(c)
	c.SetCookie(middleware.NewAccessCookie(access, secure))
	c.SetCookie(middleware.NewRefreshCookie(refresh, secure))

	return c.JSON(status, echo.Map{
		"status":       "success",
		"accessToken":  access.Value,
		"refreshToken": refresh.Value,
		"data":         echo.Map{"user": toUserResponse(u)},
	})
}

func (h *AuthHandler) secureCookies(c echo.Context) bool {
	return h.Cfg.IsProduction() || c.Scheme() == "https"
}

// SignUp registers a user, sends the welcome email and opens a session.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.Password == "" || req.PasswordConfirm == "" {
		return apperror.BadRequest("All fields are required!")
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	if err := checkEmailDomain(emailAddr, h.Cfg.BlockedDomains); err != nil {
		return err
	}
	if !validEmail(emailAddr) {
		return apperror.Unauthorized("Invalid email format!")
	}
	if !validName(firstName) {
		return apperror.Unauthorized("Invalid first name!")
	}
	if !validName(lastName) {
		return apperror.Unauthorized("Invalid last name!")
	}
	if !validPassword(req.Password) {
		return apperror.Unauthorized(passwordPolicyMsg)
	}
	if req.Password != req.PasswordConfirm {
		return apperror.BadRequest("Password did not match!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, emailAddr); err == nil {
		return apperror.Unauthorized("User with this email address already exists!")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("Failed to create user!")
	}
	u := model.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        emailAddr,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Active:       true,
	}
	id, err := h.Users.Create(ctx, &u)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperror.Unauthorized("User with this email address already exists!")
		}
		return err
	}
	u.ID = id
	u.CreatedAt = time.Now().UTC()

	// Welcome mail is awaited; a mail failure fails the signup even
	// though the user row already exists.
	payload := fmt.Sprintf("%s://%s/me", c.Scheme(), c.Request().Host)
	if err := h.Mail.Send(email.TemplateWelcome, u, payload); err != nil {
		log.Printf("signup: welcome email to %s failed: %v", u.Email, err)
		return apperror.Internal("Failed to send verification email!")
	}

	return h.sendTokens(c, u, http.StatusCreated)
}

// SignIn verifies credentials and opens a session. Unknown email and
// wrong password produce the same response so the two cases cannot be
// told apart.
func (h *AuthHandler) SignIn(c echo.Context) error {
	u, err := h.checkCredentials(c)
	if err != nil {
		return err
	}
	return h.sendTokens(c, u, http.StatusOK)
}

// AdminSignIn is SignIn with a staff gate: plain users are rejected.
func (h *AuthHandler) AdminSignIn(c echo.Context) error {
	u, err := h.checkCredentials(c)
	if err != nil {
		return err
	}
	if u.Role == model.RoleUser {
		return apperror.Forbidden("Access denied! Only admins are allowed.")
	}
	return h.sendTokens(c, u, http.StatusOK)
}

func (h *AuthHandler) checkCredentials(c echo.Context) (model.User, error) {
	var req signInReq
	if err := c.Bind(&req); err != nil {
		return model.User{}, apperror.BadRequest("Invalid request body!")
	}
	if req.Email == "" || req.Password == "" {
		return model.User{}, apperror.Unprocessable("Please provide email and password!")
	}
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(emailAddr) {
		return model.User{}, apperror.Unauthorized("Invalid email format!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, apperror.Unauthorized("Incorrect email or password")
		}
		return model.User{}, err
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return model.User{}, apperror.Unauthorized("Incorrect email or password")
	}
	return u, nil
}

// CreateAdmin registers a staff account. The route sits behind the
// administrator gate; the created account defaults to administrator when
// no role is given.
func (h *AuthHandler) CreateAdmin(c echo.Context) error {
	var req signUpReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.Password == "" || req.PasswordConfirm == "" {
		return apperror.BadRequest("All fields are required!")
	}
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if err := checkEmailDomain(emailAddr, h.Cfg.BlockedDomains); err != nil {
		return err
	}
	if !validPassword(req.Password) {
		return apperror.Unauthorized(passwordPolicyMsg)
	}
	if req.Password != req.PasswordConfirm {
		return apperror.BadRequest("Password did not match!")
	}
	role := req.Role
	if role == "" {
		role = model.RoleAdministrator
	}
	if !model.ValidRole(role) || role == model.RoleUser {
		return apperror.BadRequest("Role must be a staff role!")
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("Failed to create admin!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u := model.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        emailAddr,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	id, err := h.Users.Create(ctx, &u)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperror.Unauthorized("User with this email address already exists!")
		}
		return err
	}
	u.ID = id
	u.CreatedAt = time.Now().UTC()

	return h.sendTokens(c, u, http.StatusCreated)
}

// Refresh exchanges a valid stored refresh token for a new access token,
// rotating the stored refresh token in place. The old refresh token value
// becomes unusable the moment the rotation lands.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := h.refreshTokenFrom(c)
	if raw == "" {
		return apperror.Unauthorized("Refresh token not found. Please log in again.")
	}

	claims, err := h.Issuer.ParseRefresh(raw)
	if err != nil {
		return apperror.Unauthorized("Invalid or expired refresh token. Please log in again.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Tokens.Find(ctx, raw); err != nil {
		return apperror.Unauthorized("Refresh token is invalid or has been revoked.")
	}
	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.Unauthorized("User no longer exists.")
		}
		return err
	}

	access, err := h.Issuer.NewAccessToken(u.ID)
	if err != nil {
		return apperror.Internal("Failed to issue access token!")
	}
	rotated, err := h.Issuer.NewRefreshToken(u.ID)
	if err != nil {
		return apperror.Internal("Failed to issue refresh token!")
	}
	if err := h.Tokens.Replace(ctx, raw, rotated.Value); err != nil {
		// Raced with another rotation; the presented token already died.
		return apperror.Unauthorized("Refresh token is invalid or has been revoked.")
	}

	c.SetCookie(middleware.NewRefreshCookie(rotated, h.secureCookies(c)))

	return c.JSON(http.StatusOK, echo.Map{
		"status":      "success",
		"accessToken": access.Value,
	})
}

// LogOut revokes the presented refresh token, if any, and clears both
// cookies. Logging out twice is fine.
func (h *AuthHandler) LogOut(c echo.Context) error {
	if raw := h.refreshTokenFrom(c); raw != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		if err := h.Tokens.Delete(ctx, raw); err != nil {
			log.Printf("logout: revoke refresh token failed: %v", err)
		}
	}

	c.SetCookie(middleware.ExpiredCookie(middleware.AccessCookie))
	c.SetCookie(middleware.ExpiredCookie(middleware.RefreshCookie))

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "User logged out successfully!",
	})
}

// refreshTokenFrom reads the refresh token from the cookie, falling back
// to a JSON body for non-browser clients.
func (h *AuthHandler) refreshTokenFrom(c echo.Context) string {
	if ck, err := c.Cookie(middleware.RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var req refreshReq
	if err := c.Bind(&req); err == nil {
		return strings.TrimSpace(req.RefreshToken)
	}
	return ""
}
