package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxAdminUsername = "admin_username"
	CtxSessionID     = "admin_session_id"
)

// AdminUsername extracts the admin set by the RequireAdmin middleware.
func AdminUsername(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxAdminUsername))
}

// SessionID extracts the current session id.
func SessionID(c *gin.Context) string {
	return c.GetString(CtxSessionID)
}
