package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
)

// AuthService validates bearer tokens minted by the external identity
// service. There is no login flow here; credential storage is not this
// subsystem's concern.
type AuthService struct {
	secret []byte
}

// NewAuthService creates a service instance.
func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret)}
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid access token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid access token")
	}
	return claims, nil
}
