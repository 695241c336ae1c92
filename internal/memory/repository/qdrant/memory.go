package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"capture-recall/internal/memory"
	"capture-recall/internal/memory/repository"
	"capture-recall/internal/model"
	pkgLog "capture-recall/pkg/log"
	pkgQdrant "capture-recall/pkg/qdrant"
	"capture-recall/pkg/retry"
	"capture-recall/pkg/voyage"
)

const (
	embedCacheSize = 512
	embedCacheTTL  = 10 * time.Minute
	scrollPageSize = 256
)

type implRepository struct {
	client     *pkgQdrant.Client
	embedder   voyage.IVoyage
	collection string
	policy     retry.Policy
	l          pkgLog.Logger

	// Same text always embeds to the same vector, so retried pipelines hit
	// the cache instead of the embedding service.
	embedCache *expirable.LRU[string, []float32]
}

// New creates the Qdrant-backed vector repository.
func New(client *pkgQdrant.Client, embedder voyage.IVoyage, collection string, policy retry.Policy, l pkgLog.Logger) repository.VectorRepository {
	return &implRepository{
		client:     client,
		embedder:   embedder,
		collection: collection,
		policy:     policy,
		l:          l,
		embedCache: expirable.NewLRU[string, []float32](embedCacheSize, nil, embedCacheTTL),
	}
}

// embed fetches the vector for text, via cache. An empty vector is a valid
// service response and is returned as-is; callers decide whether that is
// acceptable.
func (r *implRepository) embed(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := r.embedCache.Get(text); ok {
		return vector, nil
	}

	vector, err := retry.DoValue(ctx, r.policy, func(ctx context.Context) ([]float32, error) {
		return r.embedder.EmbedOne(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memory.ErrEmbedding, err)
	}

	if len(vector) > 0 {
		r.embedCache.Add(text, vector)
	}
	return vector, nil
}

// Upsert embeds the description and writes the point. Fails fast on an empty
// embedding: a record must never be stored with a null vector.
func (r *implRepository) Upsert(ctx context.Context, record model.MemoryRecord) error {
	vector, err := r.embed(ctx, record.Description)
	if err != nil {
		return err
	}
	if len(vector) == 0 {
		return memory.ErrEmptyEmbedding
	}

	point := pkgQdrant.Point{
		ID:     recordIDToPointID(record.ID),
		Vector: vector,
		Payload: map[string]any{
			"record_id":   record.ID,
			"description": record.Description,
			"timestamp":   record.Timestamp,
		},
	}

	err = retry.Do(ctx, r.policy, func(ctx context.Context) error {
		return r.client.UpsertPoints(ctx, r.collection, pkgQdrant.UpsertPointsRequest{
			Points: []pkgQdrant.Point{point},
		})
	})
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", memory.ErrVectorStore, record.ID, err)
	}

	r.l.Infof(ctx, "qdrant repository: upserted record %s", record.ID)
	return nil
}

// Search embeds the query and runs similarity search. An empty query
// embedding yields zero matches rather than an error: the recall pipeline
// proceeds with empty context.
func (r *implRepository) Search(ctx context.Context, opt repository.SearchOptions) ([]repository.SearchResult, error) {
	vector, err := r.embed(ctx, opt.Query)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, nil
	}

	resp, err := retry.DoValue(ctx, r.policy, func(ctx context.Context) (*pkgQdrant.SearchResponse, error) {
		return r.client.SearchPoints(ctx, r.collection, pkgQdrant.SearchRequest{
			Vector:      vector,
			Limit:       opt.Limit,
			WithPayload: true,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", memory.ErrVectorStore, err)
	}

	results := make([]repository.SearchResult, 0, len(resp.Result))
	for _, scored := range resp.Result {
		record, ok := recordFromPayload(scored.Payload)
		if !ok {
			r.l.Warnf(ctx, "qdrant repository: point %s has malformed payload, skipping", scored.ID)
			continue
		}
		results = append(results, repository.SearchResult{Record: record, Score: scored.Score})
	}
	return results, nil
}

// Delete removes the point for the record id.
func (r *implRepository) Delete(ctx context.Context, id string) error {
	err := retry.Do(ctx, r.policy, func(ctx context.Context) error {
		return r.client.DeletePoints(ctx, r.collection, []string{recordIDToPointID(id)})
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", memory.ErrVectorStore, id, err)
	}
	r.l.Infof(ctx, "qdrant repository: deleted record %s", id)
	return nil
}

// ListAll scrolls the whole collection.
func (r *implRepository) ListAll(ctx context.Context) ([]model.MemoryRecord, error) {
	var records []model.MemoryRecord
	offset := ""

	for {
		resp, err := retry.DoValue(ctx, r.policy, func(ctx context.Context) (*pkgQdrant.ScrollResponse, error) {
			return r.client.ScrollPoints(ctx, r.collection, pkgQdrant.ScrollRequest{
				Limit:       scrollPageSize,
				Offset:      offset,
				WithPayload: true,
			})
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scroll: %v", memory.ErrVectorStore, err)
		}

		for _, point := range resp.Result.Points {
			if record, ok := recordFromPayload(point.Payload); ok {
				records = append(records, record)
			}
		}

		if resp.Result.NextPageOffset == "" {
			return records, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// recordIDToPointID maps a record id onto a Qdrant point id. Qdrant requires
// UUID or uint64 ids; UUIDv5 keeps the mapping deterministic so the same
// record always addresses the same point.
func recordIDToPointID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID)).String()
}

// recordFromPayload rebuilds a MemoryRecord from point payload.
func recordFromPayload(payload map[string]any) (model.MemoryRecord, bool) {
	id, okID := payload["record_id"].(string)
	description, okDesc := payload["description"].(string)
	timestamp, okTime := payload["timestamp"].(string)
	if !okID || !okDesc || !okTime || id == "" {
		return model.MemoryRecord{}, false
	}
	return model.MemoryRecord{ID: id, Description: description, Timestamp: timestamp}, true
}
