package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/service"
)

const (
	UserIDContextKey = "userID"
	// SessionTokenKey holds the JWT in the session cookie of browser clients.
	SessionTokenKey = "token"
)

// Auth accepts a Bearer token, falling back to the token kept in the
// session cookie.
func Auth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, apiErr := requestToken(c)
		if apiErr != nil {
			writeError(c, apiErr)
			return
		}

		userID, apiErr := authService.ParseToken(token)
		if apiErr != nil {
			writeError(c, apiErr)
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

func requestToken(c *gin.Context) (string, *apperrors.APIError) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", apperrors.Unauthorized("invalid authorization format")
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return "", apperrors.Unauthorized("invalid authorization format")
		}
		return token, nil
	}

	if token, ok := sessions.Default(c).Get(SessionTokenKey).(string); ok && token != "" {
		return token, nil
	}
	return "", apperrors.Unauthorized("missing authorization header")
}

func UserID(c *gin.Context) string {
	value, ok := c.Get(UserIDContextKey)
	if !ok {
		return ""
	}
	userID, ok := value.(string)
	if !ok {
		return ""
	}
	return userID
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, apperrors.Envelope{Error: apiErr})
}
