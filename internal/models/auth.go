package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens minted by the
// identity service.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// HasCapability applies the default role policy to the claims.
func (c *JWTClaims) HasCapability(cap Capability) bool {
	if c == nil {
		return false
	}
	return RoleHasCapability(c.Role, cap)
}
