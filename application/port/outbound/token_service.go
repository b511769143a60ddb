package outbound

import "errors"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoIdentity   = errors.New("token carries no identity claims")
)

// TokenClaims is the identity carried by a self-contained bearer token
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ClaimsDecoder extracts identity claims from a bearer token payload
type ClaimsDecoder interface {
	DecodeClaims(token string) (*TokenClaims, error)
}
