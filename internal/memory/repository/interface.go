package repository

import (
	"context"

	"capture-recall/internal/model"
)

// VectorRepository is the vector-store half of a memory record: authoritative
// for existence and content, queryable by similarity.
type VectorRepository interface {
	// Upsert embeds the record's description and stores it under its id.
	// Idempotent by id: the same id overwrites.
	Upsert(ctx context.Context, record model.MemoryRecord) error

	// Search returns records ranked by similarity to the query text.
	Search(ctx context.Context, opt SearchOptions) ([]SearchResult, error)

	// Delete removes the record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// ListAll pages through the whole namespace. Used for mirror rebuilds.
	ListAll(ctx context.Context) ([]model.MemoryRecord, error)
}

// MirrorRepository is the local durable read cache, keyed by record id.
// Mutations are atomic per record.
type MirrorRepository interface {
	Upsert(ctx context.Context, record model.MemoryRecord) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.MemoryRecord, error)
	List(ctx context.Context) ([]model.MemoryRecord, error)

	// ReplaceAll swaps the whole mirror contents in one transaction.
	ReplaceAll(ctx context.Context, records []model.MemoryRecord) error
}

// SearchOptions defines similarity-search parameters.
type SearchOptions struct {
	Query string
	Limit int
}

// SearchResult is one ranked match.
type SearchResult struct {
	Record model.MemoryRecord
	Score  float64
}
