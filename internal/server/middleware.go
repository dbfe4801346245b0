package server

import (
	"net/http"
	"strings"
	"time"

	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// IdentityResolver maps an opaque credential to a user id and role
type IdentityResolver interface {
	ResolveIdentity(token string) (string, model.Role, error)
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// AuthMiddleware validates the bearer token and stores the resolved
// identity in the request context.
func AuthMiddleware(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  http.StatusUnauthorized,
				"kind":    helpers.KindUnauthorized,
				"message": "please login to access this route",
			})
			return
		}

		userID, role, err := resolver.ResolveIdentity(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  http.StatusUnauthorized,
				"kind":    helpers.KindUnauthorized,
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(helpers.ContextUserIDKey, userID)
		c.Set(helpers.ContextRoleKey, string(role))
		c.Next()
	}
}

// RestrictTo allows only the listed roles through. Users with role
// "both" always pass.
func RestrictTo(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := helpers.RoleFromContext(c)
		if role == model.RoleBoth {
			c.Next()
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  http.StatusForbidden,
			"kind":    helpers.KindUnauthorized,
			"message": "you do not have permission to perform this action",
		})
	}
}
