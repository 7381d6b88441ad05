package model

import (
	"database/sql"
	"time"
)

// Role names accepted in the users.role column. Everything that is not
// RoleUser counts as staff for the admin sign-in gate.
const (
	RoleUser          = "user"
	RoleHallAdmin     = "hall admin"
	RolePortalManager = "portal manager"
	RoleAdministrator = "administrator"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	switch s {
	case RoleUser, RoleHallAdmin, RolePortalManager, RoleAdministrator:
		return true
	}
	return false
}

// User mirrors the `users` table. Email is stored lowercase and unique.
// PasswordResetToken holds only the SHA-256 hex digest of the reset token;
// the plaintext is emailed once and never persisted. The password-confirm
// value from signup requests exists only in the request DTO and has no
// column here.
type User struct {
	ID                       uint64
	FirstName                string
	LastName                 string
	Email                    string
	PasswordHash             string
	Role                     string
	EmailVerified            bool
	EmailVerificationCode    sql.NullString // 6-digit plaintext code
	EmailVerificationExpires sql.NullTime
	PasswordResetToken       sql.NullString // sha-256 hex digest
	PasswordResetExpires     sql.NullTime
	PasswordChangedAt        sql.NullTime
	Active                   bool
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// PasswordChangedAfter reports whether the user's password changed after
// the given token issue time. Tokens minted before a password change are
// logically revoked without keeping a blocklist.
func (u User) PasswordChangedAfter(issuedAt time.Time) bool {
	if !u.PasswordChangedAt.Valid {
		return false
	}
	return u.PasswordChangedAt.Time.Unix() > issuedAt.Unix()
}

// RefreshToken models an entry in the `refresh_tokens` table. The token
// column stores the signed refresh token verbatim; presence of the exact
// string is what makes a refresh token live, and rotation overwrites the
// value in place so at most one token per chain is ever valid.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	Token     string
	CreatedAt time.Time
}
