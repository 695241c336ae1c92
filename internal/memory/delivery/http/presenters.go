package http

import (
	"capture-recall/internal/model"
)

// --- Response DTOs ---

type recordResp struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

type listResp struct {
	Records []recordResp `json:"records"`
	Total   int          `json:"total"`
}

func newListResp(records []model.MemoryRecord) listResp {
	out := make([]recordResp, len(records))
	for i, r := range records {
		out[i] = recordResp{
			ID:          r.ID,
			Description: r.Description,
			Timestamp:   r.Timestamp,
		}
	}
	return listResp{Records: out, Total: len(out)}
}
