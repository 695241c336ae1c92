package http

import (
	"github.com/gin-gonic/gin"

	"capture-recall/internal/memory"
	"capture-recall/internal/mirror"
	"capture-recall/pkg/log"
)

// Handler is the public interface for the memory HTTP delivery layer.
type Handler interface {
	List(c *gin.Context)
	Delete(c *gin.Context)
	RebuildMirror(c *gin.Context)
}

type handler struct {
	l    log.Logger
	uc   memory.UseCase
	sync *mirror.Sync
}

var _ Handler = (*handler)(nil)

// New creates a new HTTP handler for the memory domain.
func New(l log.Logger, uc memory.UseCase, sync *mirror.Sync) *handler {
	return &handler{
		l:    l,
		uc:   uc,
		sync: sync,
	}
}
