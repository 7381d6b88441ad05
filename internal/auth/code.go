package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// CodeTTL is how long email verification codes and password reset tokens
// stay consumable.
const CodeTTL = 10 * time.Minute

// NewEmailCode returns a uniformly random 6-digit decimal code for email
// verification. The code is stored as plaintext and compared exactly.
func NewEmailCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NewResetToken returns a hex-encoded 32-byte random password reset token.
// Only its digest is ever persisted; the plaintext goes out by email once
// and cannot be recovered afterwards.
func NewResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashResetToken returns the SHA-256 hex digest stored in place of the
// plaintext reset token. Reset lookups compare digests, so a stolen
// database row is useless without the emailed value.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
