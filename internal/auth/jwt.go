package auth

import (
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity assertions embedded in an auth token:
// the registered claims plus the user id and role.
type Claims struct {
	jwt.RegisteredClaims
	UserID string     `json:"uid"`
	Role   model.Role `json:"role"`
}

const tokenValidity = 24 * time.Hour

// GenerateToken issues a signed HS256 token for the given user
func GenerateToken(userID string, role model.Role, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenValidity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Role:   role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken validates a token string and returns its claims. Invalid
// or expired tokens yield ErrUnauthorized.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w: %w", auctionerrors.ErrUnauthorized, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("parse token: %w", auctionerrors.ErrUnauthorized)
	}

	return claims, nil
}
