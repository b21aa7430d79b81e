package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/y4d-ngo/beneficiary-portal/internal/auth/domain"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth/middleware"
)

// Login checks the admin credentials and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "username and password are required"})
		return
	}

	token, sess, err := h.authService.Login(c.Request.Context(), req)
	h.respondLogin(c, token, sess, err)
}

// LoginFirebase exchanges a Firebase ID token for an admin session.
func (h *Handler) LoginFirebase(c *gin.Context) {
	var req firebaseLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "idToken is required"})
		return
	}

	token, sess, err := h.authService.LoginWithFirebase(c.Request.Context(), req.IDToken)
	h.respondLogin(c, token, sess, err)
}

func (h *Handler) respondLogin(c *gin.Context, token string, sess *domain.Session, err error) {
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid credentials"})
		case errors.Is(err, domain.ErrNotAdmin):
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
		default:
			h.logger.ErrorContext(c.Request.Context(), "admin login failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "login failed"})
		}
		return
	}

	h.logger.InfoContext(c.Request.Context(), "admin logged in", "username", sess.Username, "method", sess.Method)
	h.setSessionCookie(c, token, int(h.authService.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"token":     token,
		"username":  sess.Username,
		"expiresAt": sess.ExpiresAt,
	})
}

// Logout revokes the current session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if token := middleware.ExtractToken(c); token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			h.logger.WarnContext(c.Request.Context(), "admin logout failed", "error", err)
		}
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "logged out"})
}

// Verify reports whether the caller holds a valid admin session.
func (h *Handler) Verify(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "authenticated": false})
		return
	}
	sess, err := h.authService.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"authenticated": true,
		"username":      sess.Username,
		"expiresAt":     sess.ExpiresAt,
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.secureCookie, true)
}
