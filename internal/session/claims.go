package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the parts of a backend token the front-end cares about.
type Claims struct {
	DriverID  string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims reads the claims of a JWT without verifying its signature; only the
// backend holds the key. ok is false for opaque tokens.
func ParseClaims(token string) (Claims, bool) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, false
	}

	var claims Claims
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if id, ok := mapClaims["driver_id"].(string); ok {
		claims.DriverID = id
	} else if sub, err := mapClaims.GetSubject(); err == nil {
		claims.DriverID = sub
	}
	return claims, true
}
