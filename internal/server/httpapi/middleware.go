package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/gin-gonic/gin"
)

// usernameKey is the gin context key under which RequireAuth stores the
// authenticated username.
const usernameKey = "username"

// RequireAuth guards protected routes. It extracts the bearer access token,
// validates it through the session service (signature, expiry, and a check
// that the account still exists), and stores the username in the context.
func (s *HTTPServer) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}
		token := strings.TrimPrefix(header, common.BearerPrefix)

		username, err := s.sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrorNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token - user not found"})
			case errors.Is(err, common.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			default:
				s.logger.Error(c.Request.Context(), "authentication failed", "error", err.Error())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			}
			return
		}

		c.Set(usernameKey, username)
		c.Next()
	}
}
