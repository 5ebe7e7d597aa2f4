package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
	"github.com/oriel-mfg/factory-ops-api/pkg/response"
)

// RequireCapability gates a route behind an abstract capability. The
// route never names roles; the policy lives behind the claims'
// capability predicate.
func RequireCapability(cap models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !claims.HasCapability(cap) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "missing capability: "+string(cap)))
			c.Abort()
			return
		}

		c.Next()
	}
}
