package handler

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hostelhq/hms/internal/apperror"
)

var (
	emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRx  = regexp.MustCompile(`^[a-zA-Z0-9 -]+$`)
)

func validEmail(email string) bool { return emailRx.MatchString(email) }

func validName(name string) bool { return nameRx.MatchString(name) }

// validPassword enforces the signup password policy: 8-20 characters with
// at least one special character, one uppercase letter, one lowercase
// letter and one digit. Checked rune-wise because RE2 has no lookahead.
func validPassword(s string) bool {
	n := len([]rune(s))
	if n < 8 || n > 20 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

const passwordPolicyMsg = "Password must contain at least 1 special character, " +
	"1 lowercase letter, and 1 uppercase letter. It must be 8-20 characters long."

// checkEmailDomain rejects addresses whose domain sits on the configured
// blocklist. The domain compare is case-insensitive.
func checkEmailDomain(email string, blocked map[string]bool) error {
	at := strings.LastIndex(email, "@")
	if at < 0 || at+1 >= len(email) {
		return nil // shape errors are reported separately
	}
	if blocked[strings.ToLower(email[at+1:])] {
		return apperror.Unauthorized("Invalid email domain!")
	}
	return nil
}
