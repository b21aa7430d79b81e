package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apihttp "github.com/y4d-ngo/beneficiary-portal/internal/api/http"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListRegistrations(c.Request.Context(), c.Query("projectId"), c.Query("status"))
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "registrations": items})
}

func (h *Handler) get(c *gin.Context) {
	reg, err := h.svc.GetRegistration(c.Request.Context(), c.Param("id"))
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "registration": reg})
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *Handler) setStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	change, err := h.svc.SetRegistrationStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	if change.Changed {
		h.logger.InfoContext(c.Request.Context(), "registration status set by admin",
			"registration_id", change.Registration.ID,
			"status", change.Registration.Status,
			"admin", auth.AdminUsername(c),
			"session_id", auth.SessionID(c),
		)
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":               true,
		"registration":     change.Registration,
		"changed":          change.Changed,
		"notificationSent": change.NotificationSent,
	})
}
