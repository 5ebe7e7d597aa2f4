package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/oriel-mfg/factory-ops-api/internal/middleware"
	"github.com/oriel-mfg/factory-ops-api/internal/models"
	"github.com/oriel-mfg/factory-ops-api/internal/service"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
)

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func actorFromContext(c *gin.Context) service.Actor {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{ID: claims.UserID, Name: claims.FullName, Role: claims.Role}
}
