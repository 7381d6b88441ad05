package auth // package auth provides password hashing and token issuing primitives

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hostelhq/hms/internal/config"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// signing algorithm, expiry, malformed claims. Callers only need to know
// the token is unusable.
var ErrInvalidToken = errors.New("invalid or expired token")

// Token is a signed JWT string together with its expiry.
type Token struct {
	Value string
	Exp   time.Time
}

// Claims is the verified content of a parsed token.
type Claims struct {
	UserID   uint64
	IssuedAt time.Time
}

// Issuer signs and verifies access and refresh tokens. The two token
// classes use independent secrets so that compromise of one never allows
// forging the other.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer builds an Issuer from the loaded configuration.
func NewIssuer(cfg config.Config) *Issuer {
	return &Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		refreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	}
}

// NewAccessToken signs a short-lived HS256 token for the user.
func (i *Issuer) NewAccessToken(userID uint64) (Token, error) {
	return sign(userID, i.accessSecret, i.accessTTL)
}

// NewRefreshToken signs a long-lived HS256 token with the refresh secret.
func (i *Issuer) NewRefreshToken(userID uint64) (Token, error) {
	return sign(userID, i.refreshSecret, i.refreshTTL)
}

// ParseAccess verifies an access token's signature and expiry.
func (i *Issuer) ParseAccess(raw string) (Claims, error) {
	return parse(raw, i.accessSecret)
}

// ParseRefresh verifies a refresh token's signature and expiry.
func (i *Issuer) ParseRefresh(raw string) (Claims, error) {
	return parse(raw, i.refreshSecret)
}

func sign(userID uint64, secret []byte, ttl time.Duration) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	// The jti makes every issued token a distinct string even when two
	// are minted for the same user within the same second. Rotation
	// overwrites the stored value by exact match, so identical tokens
	// would make a rotation a no-op and collide on the unique column.
	jti := make([]byte, 16)
	if _, err := rand.Read(jti); err != nil {
		return Token{}, err
	}
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": hex.EncodeToString(jti),
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, Exp: exp}, nil
}

func parse(raw string, secret []byte) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var out Claims
	switch sub := mc["sub"].(type) {
	case float64:
		out.UserID = uint64(sub)
	default:
		return Claims{}, ErrInvalidToken
	}
	if iat, ok := mc["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(iat), 0).UTC()
	} else {
		return Claims{}, ErrInvalidToken
	}
	return out, nil
}
