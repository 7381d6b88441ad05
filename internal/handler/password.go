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
	"github.com/hostelhq/hms/internal/email"
	"github.com/hostelhq/hms/internal/middleware"
	"github.com/hostelhq/hms/internal/repository"
)

type emailReq struct {
	Email string `json:"email"`
}

type resetPasswordReq struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type verifyCodeReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type updatePasswordReq struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// ForgotPassword arms a password reset: a fresh random token is mailed to
// the user while only its SHA-256 digest is stored. The plaintext token
// exists in the email (and, in debug deployments, the response) only.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return apperror.BadRequest("Please provide your email address!")
	}
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("No user with that email address!")
		}
		return err
	}

	plain, err := auth.NewResetToken()
	if err != nil {
		return apperror.Internal("Failed to generate reset token!")
	}
	expires := time.Now().UTC().Add(auth.CodeTTL)
	if err := h.Users.SetPasswordReset(ctx, u.ID, auth.HashResetToken(plain), expires); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s://%s/api/users/resetPassword/%s", c.Scheme(), c.Request().Host, plain)
	if err := h.Mail.Send(email.TemplateForgotPass, u, resetURL); err != nil {
		log.Printf("forgotPassword: email to %s failed: %v", u.Email, err)
		if derr := h.Users.ClearPasswordReset(ctx, u.ID); derr != nil {
			log.Printf("forgotPassword: clearing reset state for %d failed: %v", u.ID, derr)
		}
		return apperror.Internal("There was an error sending the email. Try again later!")
	}

	resp := echo.Map{
		"status":  "success",
		"message": "Token sent to email!",
	}
	if h.Cfg.DebugExposeTokens {
		resp["resetToken"] = plain
		resp["resetURL"] = resetURL
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetPassword consumes a reset token. The URL token is hashed and looked
// up against unexpired digests; on success the password is replaced, the
// reset state cleared, the invalidation watermark stamped and a fresh
// session opened.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	digest := auth.HashResetToken(c.Param("token"))
	u, err := h.Users.GetByResetTokenHash(ctx, digest)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.BadRequest("Token is invalid or has expired")
		}
		return err
	}

	if req.Password == "" || req.PasswordConfirm == "" {
		return apperror.BadRequest("All fields are required!")
	}
	if !validPassword(req.Password) {
		return apperror.Unauthorized(passwordPolicyMsg)
	}
	if req.Password != req.PasswordConfirm {
		return apperror.BadRequest("Password did not match!")
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("Failed to reset password!")
	}
	changedAt := time.Now().UTC()
	if err := h.Users.UpdatePassword(ctx, u.ID, hash, changedAt); err != nil {
		return err
	}
	u.PasswordChangedAt.Time = changedAt
	u.PasswordChangedAt.Valid = true

	return h.sendTokens(c, u, http.StatusOK)
}

// SendEmailVerification arms a six-digit verification code for the user
// and mails it. A new request overwrites any previous code.
func (h *AuthHandler) SendEmailVerification(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return apperror.BadRequest("Please provide your email address!")
	}
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("No user found with this email address!")
		}
		return err
	}

	code, err := auth.NewEmailCode()
	if err != nil {
		return apperror.Internal("Failed to generate verification code!")
	}
	if err := h.Users.SetEmailVerification(ctx, u.ID, code, time.Now().UTC().Add(auth.CodeTTL)); err != nil {
		return err
	}

	if err := h.Mail.Send(email.TemplateVerifyCode, u, code); err != nil {
		log.Printf("sendEmailVerification: email to %s failed: %v", u.Email, err)
		return apperror.Internal("Failed to send verification email!")
	}

	resp := echo.Map{
		"status":  "success",
		"message": "Verification code sent to email!",
	}
	if h.Cfg.DebugExposeTokens {
		resp["code"] = code
	}
	return c.JSON(http.StatusOK, resp)
}

// VerifyEmailCode burns a verification code. The stored code must match
// exactly and still be inside its window; success marks the email verified
// and clears the code so it cannot be replayed.
func (h *AuthHandler) VerifyEmailCode(c echo.Context) error {
	var req verifyCodeReq
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Code == "" {
		return apperror.BadRequest("Please provide email and verification code!")
	}
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.BadRequest("Invalid or expired verification code!")
		}
		return err
	}

	if !u.EmailVerificationCode.Valid ||
		u.EmailVerificationCode.String != req.Code ||
		!u.EmailVerificationExpires.Valid ||
		time.Now().UTC().After(u.EmailVerificationExpires.Time) {
		return apperror.BadRequest("Invalid or expired verification code!")
	}

	if err := h.Users.MarkEmailVerified(ctx, u.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Email verified successfully!",
	})
}

// UpdatePassword changes the password of the logged-in user. It requires
// the current password, refuses a no-op change, stamps the watermark and
// re-issues tokens so the caller keeps a valid session.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	principal, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthorized("You are not logged in! Please log in to gain access.")
	}

	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body!")
	}
	if req.PasswordCurrent == "" || req.Password == "" || req.PasswordConfirm == "" {
		return apperror.BadRequest("All fields are required!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, principal.ID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(u.PasswordHash, req.PasswordCurrent) {
		return apperror.Unauthorized("Your current password is incorrect")
	}
	if req.Password == req.PasswordCurrent {
		return apperror.BadRequest("New password cannot be the same as the current password")
	}
	if !validPassword(req.Password) {
		return apperror.Unauthorized(passwordPolicyMsg)
	}
	if req.Password != req.PasswordConfirm {
		return apperror.BadRequest("Password did not match!")
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("Failed to update password!")
	}
	changedAt := time.Now().UTC()
	if err := h.Users.UpdatePassword(ctx, u.ID, hash, changedAt); err != nil {
		return err
	}
	u.PasswordChangedAt.Time = changedAt
	u.PasswordChangedAt.Valid = true

	access, err := h.Issuer.NewAccessToken(u.ID)
	if err != nil {
		return apperror.Internal("Failed to issue access token!")
	}
	refresh, err := h.Issuer.NewRefreshToken(u.ID)
	if err != nil {
		return apperror.Internal("Failed to issue refresh token!")
	}
	if err := h.Tokens.Store(ctx, u.ID, refresh.Value); err != nil {
		return apperror.Internal("Failed to save session!")
	}

	secure := h.secureCookies(c)
	c.SetCookie(middleware.NewAccessCookie(access, secure))
	c.SetCookie(middleware.NewRefreshCookie(refresh, secure))

	return c.JSON(http.StatusOK, echo.Map{
		"status":       "success",
		"message":      "Password updated successfully!",
		"accessToken":  access.Value,
		"refreshToken": refresh.Value,
	})
}
