package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitpulse/pkg/logger"
	"habitpulse/pkg/rbac"
)

const (
	ctxUserID = "auth.user_id"
	ctxRole   = "auth.role"
)

// Middleware rejects requests without a valid bearer token and stores the
// caller's user ID and role on the gin context.
func Middleware(secret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ExtractToken(c.Request)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrMissingToken.Error()})
			return
		}

		claims, err := ParseJWT(tokenStr, secret)
		if err != nil {
			logger.WithTrace(c.Request.Context(), log).Info("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, rbac.NormalizeRole(claims.Role))
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the caller's role grants permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rbac.CheckPermission(UserID(c), Role(c), permission); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user, or 0 when Middleware did not run.
func UserID(c *gin.Context) int {
	return c.GetInt(ctxUserID)
}

// Role returns the authenticated role.
func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}
