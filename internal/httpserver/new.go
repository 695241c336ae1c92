package httpserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	convDelivery "capture-recall/internal/conversation/delivery/http"
	memDelivery "capture-recall/internal/memory/delivery/http"
	"capture-recall/internal/middleware"
	"capture-recall/pkg/log"
)

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string

	middleware          middleware.Middleware
	conversationHandler convDelivery.Handler
	memoryHandler       memDelivery.Handler
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string

	Middleware          middleware.Middleware
	ConversationHandler convDelivery.Handler
	MemoryHandler       memDelivery.Handler
}

// New creates a new HTTPServer instance.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:                   logger,
		gin:                 gin.New(),
		port:                cfg.Port,
		mode:                cfg.Mode,
		environment:         cfg.Environment,
		middleware:          cfg.Middleware,
		conversationHandler: cfg.ConversationHandler,
		memoryHandler:       cfg.MemoryHandler,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (srv *HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	if srv.conversationHandler == nil {
		return errors.New("conversation handler is required")
	}
	if srv.memoryHandler == nil {
		return errors.New("memory handler is required")
	}
	return nil
}
