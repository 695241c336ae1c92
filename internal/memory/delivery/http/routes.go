package http

import (
	"github.com/gin-gonic/gin"

	"capture-recall/internal/middleware"
)

// RegisterRoutes maps HTTP verbs and paths to handler methods.
func RegisterRoutes(rg *gin.RouterGroup, h Handler, mw middleware.Middleware) {
	memories := rg.Group("/memories")
	{
		memories.GET("", h.List)
		memories.DELETE("/:id", h.Delete)
	}

	rg.POST("/mirror/rebuild", mw.RateLimit(), h.RebuildMirror)
}
