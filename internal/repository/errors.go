// Package repository implements data access over MySQL. Sentinel errors
// let handlers distinguish failure scenarios without inspecting driver
// errors: ErrEmailExists maps to a duplicate-signup response, ErrNotFound
// variants to 404s, ErrTokenNotFound to a revoked/unknown refresh token.
package repository

import (
	"errors"
	"strings"
)

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrTokenNotFound  = errors.New("refresh token not found")
	ErrHostelExists   = errors.New("hostel name already exists")
	ErrHostelNotFound = errors.New("hostel not found")
	ErrRoomExists     = errors.New("room number already exists")
	ErrRoomNotFound   = errors.New("room not found")
)

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062) without importing driver-specific error types.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
