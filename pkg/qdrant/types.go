package qdrant

// CreateCollectionRequest defines the schema for creating a collection.
type CreateCollectionRequest struct {
	Name    string       `json:"-"` // Collection name (in URL)
	Vectors VectorConfig `json:"vectors"`
}

// VectorConfig defines vector dimension and distance metric.
type VectorConfig struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"` // "Cosine", "Euclid", "Dot"
}

// Point is a vector with payload. Qdrant requires the ID to be a UUID or
// uint64, not an arbitrary string.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// UpsertPointsRequest is the request to insert/update points.
type UpsertPointsRequest struct {
	Points []Point `json:"points"`
}

// SearchRequest is the request for semantic search.
type SearchRequest struct {
	Vector      []float32      `json:"vector"`
	Limit       int            `json:"limit"`
	WithPayload bool           `json:"with_payload"`
	Filter      map[string]any `json:"filter,omitempty"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Result []ScoredPoint `json:"result"`
}

// ScoredPoint is a search result with similarity score.
type ScoredPoint struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// DeletePointsRequest is the request to delete points by id.
type DeletePointsRequest struct {
	Points []string `json:"points"`
}

// ScrollRequest pages through a collection.
type ScrollRequest struct {
	Limit       int    `json:"limit"`
	Offset      string `json:"offset,omitempty"` // Next-page token from previous response
	WithPayload bool   `json:"with_payload"`
}

// ScrollResponse is one page of points.
type ScrollResponse struct {
	Result struct {
		Points         []ScoredPoint `json:"points"`
		NextPageOffset string        `json:"next_page_offset"`
	} `json:"result"`
}
