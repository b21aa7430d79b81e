package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/verify", h.Verify)
	if h.authService.FirebaseEnabled() {
		rg.POST("/firebase", h.LoginFirebase)
	}
}
