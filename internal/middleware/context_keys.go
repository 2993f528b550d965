package middleware

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// contextKey is the type of the keys this package stores in contexts.
// Using a custom type prevents collisions.
type contextKey string

const (
	userIDKey    = contextKey("userID")
	userRoleKey  = contextKey("userRole")
	loggerCtxKey = contextKey("logger")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetPrincipalFromContext returns the authenticated caller with its role.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return domain.Principal{}, false
	}
	role, _ := c.Request.Context().Value(userRoleKey).(domain.UserRole)
	return domain.Principal{UserID: userID, Role: role}, true
}

// WithPrincipal stores an authenticated caller in ctx.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	ctx = context.WithValue(ctx, userIDKey, p.UserID)
	return context.WithValue(ctx, userRoleKey, p.Role)
}
