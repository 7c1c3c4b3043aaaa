// Package auth provides credential hashing and bearer token utilities.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is the validity window for issued tokens.
const TokenLifetime = 7 * 24 * time.Hour

var (
	// ErrInvalidToken indicates the token failed verification.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the identity embedded in a bearer token.
// Subject is always the user id. Email is present only for
// credential-based logins.
type Claims struct {
	jwt.RegisteredClaims
	Anonymous bool   `json:"anonymous"`
	Email     string `json:"email,omitempty"`
}

// IssueToken signs a token for the given user.
// Anonymous tokens (id-only logins) carry no email claim.
func IssueToken(userID string, anonymous bool, email string, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
		Anonymous: anonymous,
	}
	if !anonymous {
		claims.Email = email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a bearer token.
// Only HS256 is accepted; any parse, signature, or expiry failure
// yields ErrInvalidToken.
func VerifyToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
