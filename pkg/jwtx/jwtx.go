// Package jwtx issues and verifies the staff session tokens used by the
// authenticated admin surface. Tokens are HS256-signed JWTs; the public
// access-code surface never touches this package.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default staff session lifetime.
const DefaultSessionTTL = 12 * time.Hour

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrTokenExpired = errors.New("jwtx: token expired")
)

// Claims are the staff session claims.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated staff member.
	Email string `json:"email,omitempty"`

	// Permission scopes, e.g. "portal:read portal:write".
	Scopes []string `json:"scopes,omitempty"`
}

// Signer mints session tokens.
type Signer interface {
	Sign(c Claims) (string, error)
}

// Verifier parses and validates a raw token string.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

// HS256 signs and verifies tokens with a shared secret. Fine for a single
// binary that both issues and consumes its own sessions; a key set with
// rotation would only earn its keep once another service needs to verify.
type HS256 struct {
	Secret []byte
	Issuer string
}

// NewClaims builds minimally-correct session claims for a staff user.
func NewClaims(subject, email string, scopes []string, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Email:  email,
		Scopes: scopes,
	}
}

func (s *HS256) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.Secret)
}

func (s *HS256) Verify(raw string) (Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.Secret, nil
	},
		jwt.WithIssuer(s.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}
	if !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
