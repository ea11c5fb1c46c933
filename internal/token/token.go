// Package token mints and verifies the signed, stateless tokens that
// authorize sensitive account actions (password reset, email confirmation).
// Tokens are compact JWS strings, so they are safe to embed in URL paths.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is the single failure outcome of Verify. Tampered, expired and
// malformed tokens all collapse into it; callers surface one message.
var ErrInvalid = errors.New("invalid or expired token")

// subjectClaim carries the numeric user id the token was minted for.
const subjectClaim = "reset_password"

// Issuer signs and verifies action tokens with a shared HMAC secret.
// Verification uses the same clock as issuance and allows no leeway.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// NewIssuerWithClock injects the time source. Tests use it to advance the
// clock past a token's expiry without sleeping.
func NewIssuerWithClock(secret string, now func() time.Time) *Issuer {
	return &Issuer{secret: []byte(secret), now: now}
}

// Issue mints a token for userID that expires ttl from now. It has no side
// effects: the result is determined by the subject, clock and secret.
func (i *Issuer) Issue(userID uint, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		subjectClaim: userID,
		"exp":        i.now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify checks signature and expiry atomically and returns the subject id.
// Any failure returns ErrInvalid; there is no revocation list, so a valid
// token verifies any number of times until it expires.
func (i *Issuer) Verify(tokenString string) (uint, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return 0, ErrInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalid
	}
	subject, ok := claims[subjectClaim].(float64)
	if !ok || subject < 1 {
		return 0, ErrInvalid
	}
	return uint(subject), nil
}
