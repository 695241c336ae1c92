package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"capture-recall/internal/model"
	"capture-recall/pkg/response"
)

// List returns all saved records from the local mirror, newest first.
func (h *handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	records, err := h.uc.List(ctx, scopeFrom(c))
	if err != nil {
		h.l.Errorf(ctx, "uc.List: %v", err)
		response.InternalError(c, err)
		return
	}

	response.OK(c, newListResp(records))
}

// Delete removes a record from the vector store and the mirror.
func (h *handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	if err := h.uc.Delete(ctx, scopeFrom(c), id); err != nil {
		h.l.Errorf(ctx, "uc.Delete: %v", err)
		response.InternalError(c, err)
		return
	}

	response.OK(c, nil)
}

// RebuildMirror replaces the whole mirror with the vector store's contents.
func (h *handler) RebuildMirror(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.sync.Rebuild(ctx); err != nil {
		h.l.Errorf(ctx, "sync.Rebuild: %v", err)
		response.InternalError(c, err)
		return
	}

	response.OK(c, nil)
}

func scopeFrom(c *gin.Context) model.Scope {
	return model.Scope{SessionID: c.GetHeader("X-Session-ID")}
}
