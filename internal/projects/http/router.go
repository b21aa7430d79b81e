package http

import (
	"github.com/gin-gonic/gin"

	"github.com/y4d-ngo/beneficiary-portal/internal/api/http/middleware"
)

// RegisterPublic attaches the applicant-facing routes (browse and register).
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.get)

	register := []gin.HandlerFunc{h.register}
	if h.limiter != nil {
		register = append([]gin.HandlerFunc{middleware.RateLimit(h.limiter)}, register...)
	}
	rg.POST("/:id/register", register...)
}

// RegisterAdmin attaches project management routes. The group is expected to be guarded.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.PATCH("/:id/status", h.setStatus)
	rg.POST("/:id/reconcile", h.reconcile)
}

// RegisterMaintenance attaches the store-wide reconciliation route.
func (h *Handler) RegisterMaintenance(rg *gin.RouterGroup) {
	rg.POST("/reconcile", h.reconcileAll)
}
