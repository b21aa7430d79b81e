package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/y4d-ngo/beneficiary-portal/internal/auth"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth/domain"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth/service"
)

// SessionCookie carries the admin session token for browser clients.
const SessionCookie = "admin_session"

// RequireAdmin rejects requests without a valid admin session. The token is read from the
// admin_session cookie or a Bearer Authorization header.
func RequireAdmin(authService *service.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			c.Abort()
			return
		}

		sess, err := authService.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				logger.ErrorContext(c.Request.Context(), "session lookup failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "session lookup failed"})
				c.Abort()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(auth.CtxAdminUsername, sess.Username)
		c.Set(auth.CtxSessionID, sess.ID)
		c.Next()
	}
}

// ExtractToken returns the session token from the Bearer header, falling back to the cookie.
func ExtractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
