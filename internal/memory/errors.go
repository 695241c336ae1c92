package memory

import "errors"

// Domain-specific errors for the memory package. Each remote-call category
// has its own sentinel so the alert layer can map failures distinctly.
var (
	ErrEmptyQuery = errors.New("query is empty")
	ErrEmptyInput = errors.New("memory text is empty")

	// ErrEmptyEmbedding means the embedding service returned a valid but
	// empty vector where content was required. Checked before any upsert:
	// a record must never be stored with a null vector.
	ErrEmptyEmbedding = errors.New("embedding is empty")

	// ErrEmbedding tags embedding-service failures.
	ErrEmbedding = errors.New("embedding service failed")

	// ErrVectorStore tags vector-store failures (network, quota, conflict).
	ErrVectorStore = errors.New("vector store failed")

	// ErrGeneration tags answer-generation failures.
	ErrGeneration = errors.New("answer generation failed")

	// ErrNotFound means no record exists under the given id.
	ErrNotFound = errors.New("memory record not found")
)
