package memory

import (
	"context"

	"capture-recall/internal/model"
)

// UseCase is the business logic interface for the memory domain.
type UseCase interface {
	// Save embeds and stores a fact. A zero-value ID creates a new record;
	// passing an existing ID updates it in place. The write succeeds once
	// the vector-store half succeeds; the mirror update is attempted
	// unconditionally afterward, best-effort.
	Save(ctx context.Context, sc model.Scope, input SaveInput) (model.MemoryRecord, error)

	// Delete removes a record from the vector store, then from the mirror.
	Delete(ctx context.Context, sc model.Scope, id string) error

	// List returns all records from the local mirror, newest first.
	List(ctx context.Context, sc model.Scope) ([]model.MemoryRecord, error)

	// Answer runs the recall pipeline: embed the question, query the vector
	// store, and generate an answer. Zero matches still produce an answer
	// from empty context, never an error.
	Answer(ctx context.Context, sc model.Scope, input AnswerInput) (AnswerOutput, error)
}

// SaveInput is the input for Save.
type SaveInput struct {
	ID          string // optional; empty generates a new id
	Description string
}

// AnswerInput is the input for Answer.
type AnswerInput struct {
	Question string
}

// AnswerOutput is the result of Answer.
type AnswerOutput struct {
	Answer      string
	SourceCount int
}
