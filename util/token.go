package util

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenTTL is the fixed expiry horizon for session tokens. Tokens are
// stateless; there is no server-side revocation list.
const TokenTTL = 24 * time.Hour

// Subject roles carried in session tokens.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// TokenClaims is the decoded payload of a session token.
type TokenClaims struct {
	ID   string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// CreateToken issues a signed HS256 session token carrying the subject
// identifier and role with a 24-hour expiry.
func CreateToken(id, role string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(GetJWTSecretByte())
}

// ParseToken validates a session token's signature and expiry and returns the
// embedded subject identifier and role. Signature mismatch and expiry are
// reported the same way.
func ParseToken(tokenString string) (id, role string, err error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return GetJWTSecretByte(), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	if claims.ID == "" {
		claims.ID = claims.Subject
	}
	return claims.ID, claims.Role, nil
}
