package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fabricflow/fabricflow/application/port/outbound"
)

// JWTService decodes identity claims from bearer tokens. With a secret it
// verifies the signature; without one it reads the payload as-is, which is
// only suitable for attributing audit entries.
type JWTService struct {
	algorithm  string
	hmacSecret []byte
	parser     *jwt.Parser
}

var ErrTokenExpired = errors.New("token expired")

func NewJWTService(secret, algorithm string) (*JWTService, error) {
	if algorithm == "" {
		algorithm = "HS256"
	}
	if algorithm != "HS256" {
		return nil, fmt.Errorf("unsupported JWT algorithm: %s", algorithm)
	}

	return &JWTService{
		algorithm:  algorithm,
		hmacSecret: []byte(secret),
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{algorithm})),
	}, nil
}

// Verifying reports whether signatures are checked
func (s *JWTService) Verifying() bool {
	return len(s.hmacSecret) > 0
}

// IssueToken signs a token for the given claims. Used by tooling and tests.
func (s *JWTService) IssueToken(claims outbound.TokenClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	tokenClaims := jwt.MapClaims{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"email":    claims.Email,
		"role":     claims.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	signed, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodeClaims implements outbound.ClaimsDecoder
func (s *JWTService) DecodeClaims(tokenString string) (*outbound.TokenClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, outbound.ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	if s.Verifying() {
		token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.hmacSecret, nil
		})
		if err != nil {
			return nil, s.handleValidationError(err)
		}
		if !token.Valid {
			return nil, outbound.ErrInvalidToken
		}
	} else {
		if _, _, err := s.parser.ParseUnverified(tokenString, claims); err != nil {
			return nil, outbound.ErrInvalidToken
		}
	}

	result := &outbound.TokenClaims{
		UserID:   firstClaim(claims, "user_id", "userId", "id", "sub"),
		Username: firstClaim(claims, "username", "name", "preferred_username"),
		Email:    firstClaim(claims, "email"),
		Role:     firstClaim(claims, "role"),
	}
	if result.UserID == "" && result.Username == "" && result.Email == "" {
		return nil, outbound.ErrNoIdentity
	}
	return result, nil
}

func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

func (s *JWTService) handleValidationError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return outbound.ErrInvalidToken
}
