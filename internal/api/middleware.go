package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/service"
	"github.com/taskflow/taskflow/pkg/auth"
)

const contextUserKey = "auth.user"

// RequireAuth rejects requests without a valid, unrevoked bearer token
// and stores the authenticated user in the request context.
func RequireAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// currentUser returns the user placed in the context by RequireAuth.
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(contextUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// RequestLogger logs each request with its duration and status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		level := "INFO"
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = "ERROR"
		}
		log.Printf("[%s] %s %s completed in %v (status: %d)",
			level, c.Request.Method, c.Request.URL.Path, duration, c.Writer.Status())
	}
}
