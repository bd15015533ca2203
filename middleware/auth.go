package middleware

import (
	"strings"
	"time"

	"github.com/SmartSplit/smart-split-backend/config"
	apperrors "github.com/SmartSplit/smart-split-backend/errors"
	"github.com/SmartSplit/smart-split-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload issued at login. Subject carries the user ID.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token and stores the caller's identity
// in the gin context under UserIDKey / UserNameKey.
func AuthMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		header := c.GetHeader("Authorization")
		if header == "" {
			_ = c.Error(apperrors.Unauthorized("missing_auth", "Authorization header required"))
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header || tokenString == "" {
			_ = c.Error(apperrors.Unauthorized("invalid_auth_format", "Authorization header must be a Bearer token"))
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JwtSecretKey), nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(30*time.Second))

		if err != nil || !token.Valid {
			log.Debugw("Token validation failed", "error", err, "path", c.Request.URL.Path)
			if err != nil && strings.Contains(err.Error(), "expired") {
				_ = c.Error(apperrors.Unauthorized("token_expired", "Your session has expired"))
			} else {
				_ = c.Error(apperrors.Unauthorized("invalid_token", "Invalid authentication token"))
			}
			c.Abort()
			return
		}

		userID := claims.Subject
		if userID == "" {
			_ = c.Error(apperrors.Unauthorized("invalid_token", "Token is missing a subject"))
			c.Abort()
			return
		}

		c.Set(string(UserIDKey), userID)
		if claims.Name != "" {
			c.Set(string(UserNameKey), claims.Name)
		}
		c.Next()
	}
}
