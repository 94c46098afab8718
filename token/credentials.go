package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ExpiryOf reads the exp claim of a JWT access token without verifying its
// signature. The client never holds the signing key; the API verifies.
func ExpiryOf(rawToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "token.ExpiryOf ParseUnverified")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "token.ExpiryOf GetExpirationTime")
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// New builds the credential pair held by a session. Opaque (non-JWT) access
// tokens are accepted and simply carry no expiry.
func New(accessToken, refreshToken string) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if exp, err := ExpiryOf(accessToken); err == nil {
		t.Expiry = exp
	}
	return t
}

// WithAccessToken returns a copy of t carrying a new access token and its expiry.
func WithAccessToken(t *oauth2.Token, accessToken string) *oauth2.Token {
	refresh := ""
	if t != nil {
		refresh = t.RefreshToken
	}
	return New(accessToken, refresh)
}

// IsExpired reports whether the access token has a known expiry that has passed.
func IsExpired(t *oauth2.Token) bool {
	if t == nil || t.AccessToken == "" {
		return true
	}
	if t.Expiry.IsZero() {
		return false
	}
	return !NowTimeFunc().Before(t.Expiry)
}
