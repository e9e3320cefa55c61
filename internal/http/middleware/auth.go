package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atm360/backend/internal/auth"
	"github.com/atm360/backend/internal/models"
)

// Context key under which Protect stores the authenticated user.
const UserKey = "auth.user"

type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// Protect verifies the bearer token and loads the user it names. A
// token whose user no longer exists is rejected, not just expired ones.
func Protect(m *auth.Manager, users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "Not authorized, no token")
			return
		}
		claims, err := m.VerifyToken(token)
		if err != nil {
			abortUnauthorized(c, "Not authorized, token failed")
			return
		}
		user, err := users.GetUserByID(c.Request.Context(), claims.Subject)
		if err != nil {
			abortUnauthorized(c, "User not found, token failed")
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

// RestrictTo allows only the listed roles past. Must run after Protect.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFrom(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to perform this action",
			},
		})
	}
}

// UserFrom returns the user Protect attached to the request.
func UserFrom(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
