package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lusia-studio/grades-api/internal/middleware"
	"github.com/lusia-studio/grades-api/internal/models"
	appErrors "github.com/lusia-studio/grades-api/pkg/errors"
	"github.com/lusia-studio/grades-api/pkg/response"
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

// currentStudent resolves the caller's ID. Every grade route is scoped to it,
// so a missing identity aborts with 401.
func currentStudent(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}
