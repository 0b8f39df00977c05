package middleware

import (
	"strings"

	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TeacherChecker answers the authoring role check for a user id.
type TeacherChecker interface {
	IsTeacher(userID string) bool
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware requires a valid bearer token and stores its claims on the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, secret); err == nil {
				c.Set(util.ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

// TeacherMiddleware admits only users on the teacher allow-list. Must run after AuthMiddleware.
func TeacherMiddleware(teachers TeacherChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := util.GetUserID(c)
		if userID == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !teachers.IsTeacher(userID) {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
