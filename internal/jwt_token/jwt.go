// Package jwttoken signs and validates the HS256 access tokens that guard
// staff-only surfaces (catalog mutations, audit queries). Tokens are minted
// out of band; the service only validates them, and tests sign their own.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"circ/internal/platform/middleware"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
}

func NewJWTService(signingKey string, issuer string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// GenerateAccessToken signs a token identifying an actor and their role.
func (s *JWTService) GenerateAccessToken(userID id.UserID, role id.Role, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID.String(),
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token, returning middleware claims.
func (s *JWTService) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}
	return &middleware.TokenClaims{UserID: userID, Role: role}, nil
}
