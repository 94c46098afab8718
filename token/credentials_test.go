package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-cms-client/token"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestExpiryOf(t *testing.T) {
	exp := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	got, err := token.ExpiryOf(signedToken(t, exp))
	require.NoError(t, err)
	require.True(t, exp.Equal(got))

	_, err = token.ExpiryOf("not-a-jwt")
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	token.NowTimeFunc = func() time.Time { return now }
	defer func() { token.NowTimeFunc = time.Now }()

	t.Run("jwt carries expiry", func(t *testing.T) {
		tok := token.New(signedToken(t, now.Add(time.Hour)), "r1")
		require.Equal(t, "r1", tok.RefreshToken)
		require.Equal(t, "Bearer", tok.TokenType)
		require.False(t, token.IsExpired(tok))

		expired := token.WithAccessToken(tok, signedToken(t, now.Add(-time.Minute)))
		require.Equal(t, "r1", expired.RefreshToken)
		require.True(t, token.IsExpired(expired))
	})

	t.Run("opaque token never expires locally", func(t *testing.T) {
		tok := token.New("opaque", "")
		require.True(t, tok.Expiry.IsZero())
		require.False(t, token.IsExpired(tok))
	})

	t.Run("missing token is expired", func(t *testing.T) {
		require.True(t, token.IsExpired(nil))
		require.True(t, token.IsExpired(token.New("", "r1")))
	})
}
