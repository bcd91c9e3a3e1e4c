package backend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired inspects the access token's exp claim without verifying
// the signature; validation is the backend's job, this only lets the
// client tell a stale login from a fresh one before issuing requests.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// Tokens without an exp claim never go stale client-side.
		return false
	}
	return now.After(exp.Time)
}
