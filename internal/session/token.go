package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrNoExpiry is returned when a token carries no parseable exp claim.
// Callers treat such a token as already expired.
var ErrNoExpiry = errors.New("token has no expiry claim")

// TokenExpiry decodes the payload segment of a bearer token and returns its
// expiry. The signature is deliberately not verified: the portal is not the
// token's audience, it only needs the expiry to schedule the automatic
// logout. Verification happens upstream on every proxied request.
func TokenExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("decode token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// TokenExpired reports whether the token is past its expiry. A token whose
// expiry cannot be decoded counts as expired.
func TokenExpired(token string) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	return !exp.After(time.Now())
}
