package models

import "github.com/golang-jwt/jwt/v5"

// JwtCustomClaims carries the authenticated identity through request context.
// Role is included so route guards can gate dispatcher-only endpoints without
// a user lookup; the authorization engine still re-checks against the stored
// user before any mutation.
type JwtCustomClaims struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
