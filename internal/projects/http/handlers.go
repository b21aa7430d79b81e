package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apihttp "github.com/y4d-ngo/beneficiary-portal/internal/api/http"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth"
	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListProjects(c.Request.Context(), c.Query("status"))
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) create(c *gin.Context) {
	var req domain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), req)
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	var req domain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.UpdateProject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
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

	p, err := h.svc.SetProjectStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	h.logger.InfoContext(c.Request.Context(), "project status changed by admin",
		"project_id", p.ID,
		"status", p.Status,
		"admin", auth.AdminUsername(c),
		"session_id", auth.SessionID(c),
	)
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	h.logger.InfoContext(c.Request.Context(), "project deleted by admin",
		"project_id", c.Param("id"),
		"admin", auth.AdminUsername(c),
		"session_id", auth.SessionID(c),
	)
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Project deleted successfully"})
}

func (h *Handler) register(c *gin.Context) {
	var req domain.RegistrationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	reg, err := h.svc.AdmitRegistration(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ok":             true,
		"message":        "Registration successful",
		"registrationId": reg.ID,
	})
}

func (h *Handler) reconcile(c *gin.Context) {
	res, err := h.svc.Reconcile(c.Request.Context(), c.Param("id"))
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
}

func (h *Handler) reconcileAll(c *gin.Context) {
	results, err := h.svc.ReconcileAll(c.Request.Context())
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	repaired := 0
	for _, r := range results {
		if r.Repaired {
			repaired++
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "results": results, "repaired": repaired})
}
