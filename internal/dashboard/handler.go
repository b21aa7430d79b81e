package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apihttp "github.com/y4d-ngo/beneficiary-portal/internal/api/http"
)

// Handler serves GET /stats under the admin dashboard group.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/stats", h.stats)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		apihttp.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": stats})
}
