package http

import (
	"github.com/gin-gonic/gin"

	"capture-recall/internal/middleware"
)

// RegisterRoutes maps HTTP verbs and paths to handler methods.
func RegisterRoutes(rg *gin.RouterGroup, h Handler, mw middleware.Middleware) {
	conv := rg.Group("/conversation")
	{
		conv.POST("/submit", mw.RateLimit(), h.Submit)
		conv.POST("/audio", mw.RateLimit(), h.SubmitAudio)
		conv.POST("/confirm", h.Confirm)
		conv.POST("/cancel", h.Cancel)
		conv.POST("/edit", h.Edit)
		conv.POST("/retry", mw.RateLimit(), h.Retry)
		conv.POST("/dismiss", h.Dismiss)
		conv.GET("/state", h.State)
	}
}
