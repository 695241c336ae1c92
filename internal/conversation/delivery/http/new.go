package http

import (
	"github.com/gin-gonic/gin"

	"capture-recall/internal/conversation"
	"capture-recall/pkg/log"
)

// Handler is the public interface for the conversation HTTP delivery layer.
type Handler interface {
	Submit(c *gin.Context)
	SubmitAudio(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	Edit(c *gin.Context)
	Retry(c *gin.Context)
	Dismiss(c *gin.Context)
	State(c *gin.Context)
}

type handler struct {
	l       log.Logger
	machine *conversation.Machine
}

var _ Handler = (*handler)(nil)

// New creates a new HTTP handler for the conversation domain.
func New(l log.Logger, machine *conversation.Machine) *handler {
	return &handler{
		l:       l,
		machine: machine,
	}
}
