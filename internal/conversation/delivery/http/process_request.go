package http

import (
	"github.com/gin-gonic/gin"
)

// processSubmitReq binds and validates the submit request body.
func (h *handler) processSubmitReq(c *gin.Context) (submitReq, error) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	return req, nil
}

// processSubmitAudioReq binds and validates the audio submit request body.
func (h *handler) processSubmitAudioReq(c *gin.Context) (submitAudioReq, error) {
	var req submitAudioReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	return req, nil
}

// processEditReq binds and validates the pending-edit request body.
func (h *handler) processEditReq(c *gin.Context) (editReq, error) {
	var req editReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	return req, nil
}
