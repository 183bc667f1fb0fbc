package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCookie is returned for cookies that fail signature or shape checks
var ErrInvalidCookie = errors.New("invalid session cookie")

type cookieClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// CookieSigner wraps session tokens in an HS256 JWT so tampered cookies are
// rejected before any store lookup. Expiry is enforced by the store, not the JWT.
type CookieSigner struct {
	secret []byte
}

// NewCookieSigner creates a CookieSigner keyed by secret
func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

// Sign returns the cookie value carrying token
func (s *CookieSigner) Sign(token string) (string, error) {
	claims := cookieClaims{SessionID: token}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session cookie: %w", err)
	}
	return signed, nil
}

// Verify returns the session token inside a cookie value
func (s *CookieSigner) Verify(value string) (string, error) {
	if value == "" {
		return "", ErrInvalidCookie
	}
	token, err := jwt.ParseWithClaims(value, &cookieClaims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCookie, err)
	}

	claims, ok := token.Claims.(*cookieClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidCookie
	}
	return claims.SessionID, nil
}
