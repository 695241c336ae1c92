package http

import (
	"github.com/gin-gonic/gin"

	"capture-recall/pkg/response"
)

// Submit starts a new conversation turn from typed text. Any in-flight turn
// is superseded.
func (h *handler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processSubmitReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	st := h.machine.Submit(ctx, req.Text)
	response.OK(c, newStateResp(st))
}

// SubmitAudio starts a turn from a recorded audio file.
func (h *handler) SubmitAudio(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processSubmitAudioReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	st := h.machine.SubmitAudio(ctx, req.AudioPath)
	response.OK(c, newStateResp(st))
}

// Confirm commits the pending reminder or calendar event.
func (h *handler) Confirm(c *gin.Context) {
	st := h.machine.Confirm(c.Request.Context())
	response.OK(c, newStateResp(st))
}

// Cancel discards the pending action.
func (h *handler) Cancel(c *gin.Context) {
	st := h.machine.CancelPending(c.Request.Context())
	response.OK(c, newStateResp(st))
}

// Edit applies user edits to the pending action before commit.
func (h *handler) Edit(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processEditReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	st := h.machine.EditPending(ctx, req.toEdit())
	response.OK(c, newStateResp(st))
}

// Retry re-runs the last input through the whole pipeline.
func (h *handler) Retry(c *gin.Context) {
	st := h.machine.Retry(c.Request.Context())
	response.OK(c, newStateResp(st))
}

// Dismiss returns a terminal display state back to input.
func (h *handler) Dismiss(c *gin.Context) {
	st := h.machine.Dismiss(c.Request.Context())
	response.OK(c, newStateResp(st))
}

// State returns the current conversation state.
func (h *handler) State(c *gin.Context) {
	response.OK(c, newStateResp(h.machine.State()))
}
