package handlers

import (
	apperrors "github.com/SmartSplit/smart-split-backend/errors"
	"github.com/SmartSplit/smart-split-backend/middleware"
	"github.com/gin-gonic/gin"
)

// getUserIDFromContext extracts the authenticated user ID from the Gin context.
// Returns empty string if not found (caller should handle unauthorized response).
func getUserIDFromContext(c *gin.Context) string {
	return c.GetString(string(middleware.UserIDKey))
}

func getUserNameFromContext(c *gin.Context) string {
	return c.GetString(string(middleware.UserNameKey))
}

// requireUserID extracts the authenticated user ID or sets an auth error.
// Returns false when the caller should stop.
func requireUserID(c *gin.Context) (string, bool) {
	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("missing_auth", "Authentication required"))
		return "", false
	}
	return userID, true
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}
