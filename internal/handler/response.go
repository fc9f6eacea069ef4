package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/middleware"
)

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	if apiErr == nil {
		apiErr = apperrors.Internal("")
	}
	c.JSON(apiErr.Status, apperrors.Envelope{Error: apiErr})
}

// bindJSON decodes the body into dst, writing the invalid_json error
// itself when that fails.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, apperrors.InvalidJSON())
		return false
	}
	return true
}

// currentUser returns the authenticated owner, answering 401 when the
// route was mounted without the auth middleware.
func currentUser(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		writeError(c, apperrors.Unauthorized(""))
		return "", false
	}
	return userID, true
}
