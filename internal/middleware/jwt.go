package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agro-ad/backend/internal/auth"
	"github.com/agro-ad/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for user role in gin context.
	ContextUserRole = "user_role"
	// ContextUsername is the key for the username in gin context.
	ContextUsername = "username"
)

// JWT returns a middleware that validates the session token and sets user claims in context.
// The token is read from the session cookie first, then from an Authorization: Bearer header.
func JWT(jwtService *auth.JWTService, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = auth.DefaultCookieName
	}
	return func(c *gin.Context) {
		token, ok := tokenFrom(c, cookieName)
		if !ok {
			response.Unauthorized(c, "missing session")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

func tokenFrom(c *gin.Context, cookieName string) (string, bool) {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v, true
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
