package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hostelhq/hms/internal/config"
)

func testIssuer() *Issuer {
	return NewIssuer(config.Config{
		AccessSecret:   "access-secret-for-tests",
		RefreshSecret:  "refresh-secret-for-tests",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	i := testIssuer()

	tok, err := i.NewAccessToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	require.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	claims, err := i.ParseAccess(tok.Value)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.UserID)
	require.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	i := testIssuer()

	tok, err := i.NewRefreshToken(7)
	require.NoError(t, err)

	claims, err := i.ParseRefresh(tok.Value)
	require.NoError(t, err)
	require.Equal(t, uint64(7), claims.UserID)
}

func TestIssuedTokensAreDistinct(t *testing.T) {
	i := testIssuer()

	// Back-to-back mints land in the same second; rotation depends on
	// every issued token being a distinct string.
	seen := map[string]bool{}
	for n := 0; n < 20; n++ {
		tok, err := i.NewRefreshToken(1)
		require.NoError(t, err)
		require.False(t, seen[tok.Value], "duplicate refresh token issued")
		seen[tok.Value] = true
	}

	a, err := i.NewAccessToken(1)
	require.NoError(t, err)
	b, err := i.NewAccessToken(1)
	require.NoError(t, err)
	require.NotEqual(t, a.Value, b.Value)
}

func TestTokenClassesAreNotInterchangeable(t *testing.T) {
	i := testIssuer()

	access, err := i.NewAccessToken(1)
	require.NoError(t, err)
	refresh, err := i.NewRefreshToken(1)
	require.NoError(t, err)

	_, err = i.ParseRefresh(access.Value)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = i.ParseAccess(refresh.Value)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	i := testIssuer()
	other := NewIssuer(config.Config{
		AccessSecret:   "a-different-access-secret",
		RefreshSecret:  "a-different-refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
	})

	tok, err := i.NewAccessToken(9)
	require.NoError(t, err)

	_, err = other.ParseAccess(tok.Value)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	expired := NewIssuer(config.Config{
		AccessSecret:   "access-secret-for-tests",
		RefreshSecret:  "refresh-secret-for-tests",
		AccessTTLMin:   -1,
		RefreshTTLDays: 30,
	})

	tok, err := expired.NewAccessToken(3)
	require.NoError(t, err)

	_, err = expired.ParseAccess(tok.Value)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	i := testIssuer()

	_, err := i.ParseAccess("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = i.ParseRefresh("")
	require.ErrorIs(t, err, ErrInvalidToken)
}
