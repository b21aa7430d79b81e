package http

import "github.com/gin-gonic/gin"

// Register attaches registration routes to the given (admin) router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.setStatus)
}
