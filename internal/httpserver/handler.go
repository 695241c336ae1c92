package httpserver

import (
	"context"

	"github.com/gin-gonic/gin"

	convDelivery "capture-recall/internal/conversation/delivery/http"
	memDelivery "capture-recall/internal/memory/delivery/http"
)

func (srv *HTTPServer) mapHandlers() error {
	srv.registerMiddlewares()
	srv.registerSystemRoutes()
	srv.registerDomainRoutes()
	return nil
}

func (srv *HTTPServer) registerMiddlewares() {
	srv.gin.Use(gin.Recovery())
	srv.gin.Use(srv.middleware.RequestLog())
}

func (srv *HTTPServer) registerSystemRoutes() {
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)
}

// registerDomainRoutes registers all domain routes under /api/v1.
func (srv *HTTPServer) registerDomainRoutes() {
	ctx := context.Background()
	api := srv.gin.Group("/api/v1")

	convDelivery.RegisterRoutes(api, srv.conversationHandler, srv.middleware)
	srv.l.Infof(ctx, "Conversation routes registered under /api/v1/conversation")

	memDelivery.RegisterRoutes(api, srv.memoryHandler, srv.middleware)
	srv.l.Infof(ctx, "Memory routes registered under /api/v1/memories")
}
