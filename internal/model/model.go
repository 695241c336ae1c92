package model

import "time"

// Environment names.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentProduction  Environment = "production"
)

// Scope carries per-request identity through usecases.
type Scope struct {
	SessionID string
}

// MemoryRecord is a saved fact. ID is caller-generated and stable across
// edits; the same ID always addresses the same record in both the vector
// store and the local mirror.
type MemoryRecord struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"` // RFC3339
}

// NewTimestamp returns the canonical timestamp string for a record.
func NewTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
