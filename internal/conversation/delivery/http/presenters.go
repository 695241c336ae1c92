package http

import (
	"time"

	"capture-recall/internal/conversation"
)

// --- Request DTOs ---

type submitReq struct {
	Text string `json:"text" binding:"required,min=1,max=4000"`
}

type submitAudioReq struct {
	AudioPath string `json:"audio_path" binding:"required"`
}

type editReq struct {
	Title    *string    `json:"title"    binding:"omitempty,min=1,max=255"`
	StartAt  *time.Time `json:"start_at"`
	EndAt    *time.Time `json:"end_at"`
	Location *string    `json:"location" binding:"omitempty,max=500"`
	Notes    *string    `json:"notes"    binding:"omitempty,max=2000"`
}

func (r editReq) toEdit() conversation.PendingEdit {
	return conversation.PendingEdit{
		Title:    r.Title,
		StartAt:  r.StartAt,
		EndAt:    r.EndAt,
		Location: r.Location,
		Notes:    r.Notes,
	}
}

// --- Response DTOs ---

type stateResp struct {
	State conversation.State `json:"state"`
}

func newStateResp(st conversation.State) stateResp {
	return stateResp{State: st}
}
