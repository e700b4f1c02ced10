package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edumesh/school-ops-api/internal/middleware"
	"github.com/edumesh/school-ops-api/internal/models"
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

// ownershipRequester returns the id used for ownership checks. Principals see
// everything, so their requester id is empty.
func ownershipRequester(claims *models.JWTClaims) string {
	if claims == nil || claims.Role == models.RolePrincipal {
		return ""
	}
	return claims.UserID
}
