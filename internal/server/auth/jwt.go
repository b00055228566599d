// Package auth issues and verifies the access tokens that carry a caller's
// principal.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the caller principal.
type Claims struct {
	jwt.RegisteredClaims
	Principal string
}

// GenerateToken signs an HS256 token for principal valid for validity.
func GenerateToken(principal string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Principal: principal,
	})
	return token.SignedString(secretKey)
}

// PrincipalFromToken verifies tokenString and returns its principal.
// Expired tokens fail with common.ErrTokenExpired, anything else invalid
// with common.ErrInvalidToken.
func PrincipalFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%v: %w", err, common.ErrInvalidToken)
	}
	if !token.Valid || claims.Principal == "" || common.IsAnonymous(claims.Principal) {
		return "", common.ErrInvalidToken
	}
	return claims.Principal, nil
}
