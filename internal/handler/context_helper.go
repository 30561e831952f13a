package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/classtime/classtime-api/internal/middleware"
	"github.com/classtime/classtime-api/internal/models"
)

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

// identityFromContext returns the caller identity, zero-valued when the
// request carries no verified token. Services fail closed on the zero value.
func identityFromContext(c *gin.Context) models.Identity {
	return claimsFromContext(c).Identity()
}
