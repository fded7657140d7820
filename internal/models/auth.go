package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserRole is the platform role carried in access tokens.
type UserRole string

// Known roles.
const (
	RoleAdmin   UserRole = "admin"
	RoleStudent UserRole = "user"
)

// JWTClaims represents the platform access token payload. Tokens are issued
// by the course platform; the gateway only reads them.
type JWTClaims struct {
	UserID string   `json:"userId"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email,omitempty"`
	Name   string   `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the caller of a gateway request. Token is forwarded to the
// backend unchanged on every call made on the caller's behalf.
type Principal struct {
	UserID string
	Role   UserRole
	Token  string
}

// SessionKey identifies the caller's console session. Unverified tokens fall
// back to the token itself so sessions never leak across callers.
func (p Principal) SessionKey() string {
	if p.UserID != "" {
		return "user:" + p.UserID
	}
	return "token:" + p.Token
}
