package voyage

import "context"

// IVoyage defines the interface for the embedding service.
// Implementations are safe for concurrent use.
type IVoyage interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

var _ IVoyage = (*Client)(nil)
