package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"capture-recall/internal/memory"
	"capture-recall/internal/memory/repository"
	"capture-recall/internal/mirror"
	"capture-recall/internal/model"
	"capture-recall/pkg/llmprovider"
	pkgLog "capture-recall/pkg/log"
	"capture-recall/pkg/retry"
)

const (
	defaultSearchLimit = 5
	answerTemperature  = 0.3
	answerMaxTokens    = 1024
)

const answerSystemPrompt = `You are a personal memory assistant. Answer the user's question using ONLY the saved facts provided below. Be concise and direct.
If the saved facts do not contain the answer, say you have nothing saved about that. Never invent facts.`

type implUseCase struct {
	vectors repository.VectorRepository
	sync    *mirror.Sync
	llm     *llmprovider.Manager
	mirror  repository.MirrorRepository
	policy  retry.Policy
	l       pkgLog.Logger
	now     func() time.Time
}

// New creates the memory use case.
func New(vectors repository.VectorRepository, mirrorRepo repository.MirrorRepository, sync *mirror.Sync, llm *llmprovider.Manager, policy retry.Policy, l pkgLog.Logger) memory.UseCase {
	return &implUseCase{
		vectors: vectors,
		mirror:  mirrorRepo,
		sync:    sync,
		llm:     llm,
		policy:  policy,
		l:       l,
		now:     time.Now,
	}
}

// Save embeds and stores a fact. The vector store is the commit point; the
// mirror update afterward is best-effort and never rolls the save back.
func (uc *implUseCase) Save(ctx context.Context, sc model.Scope, input memory.SaveInput) (model.MemoryRecord, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return model.MemoryRecord{}, memory.ErrEmptyInput
	}

	record := model.MemoryRecord{
		ID:          input.ID,
		Description: description,
		Timestamp:   model.NewTimestamp(uc.now()),
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	if err := uc.vectors.Upsert(ctx, record); err != nil {
		return model.MemoryRecord{}, err
	}
	uc.l.Infof(ctx, "memory usecase: saved record %s for session %s", record.ID, sc.SessionID)

	uc.sync.ApplyUpsert(ctx, record)
	return record, nil
}

// Delete removes a record from the vector store, then mirrors the delete.
func (uc *implUseCase) Delete(ctx context.Context, sc model.Scope, id string) error {
	if err := uc.vectors.Delete(ctx, id); err != nil {
		return err
	}
	uc.sync.ApplyDelete(ctx, id)
	return nil
}

// List reads from the local mirror, newest first.
func (uc *implUseCase) List(ctx context.Context, sc model.Scope) ([]model.MemoryRecord, error) {
	return uc.mirror.List(ctx)
}

// Answer runs the recall pipeline. Zero matches is a normal outcome: the
// model answers from empty context rather than the pipeline erroring out.
func (uc *implUseCase) Answer(ctx context.Context, sc model.Scope, input memory.AnswerInput) (memory.AnswerOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return memory.AnswerOutput{}, memory.ErrEmptyQuery
	}

	results, err := uc.vectors.Search(ctx, repository.SearchOptions{
		Query: question,
		Limit: defaultSearchLimit,
	})
	if err != nil {
		return memory.AnswerOutput{}, err
	}

	resp, err := retry.DoValue(ctx, uc.policy, func(ctx context.Context) (*llmprovider.Response, error) {
		return uc.llm.Generate(ctx, &llmprovider.Request{
			System:      answerSystemPrompt,
			Messages:    []llmprovider.Message{{Role: "user", Content: buildAnswerPrompt(question, results)}},
			Temperature: answerTemperature,
			MaxTokens:   answerMaxTokens,
		})
	})
	if err != nil {
		return memory.AnswerOutput{}, fmt.Errorf("%w: %v", memory.ErrGeneration, err)
	}

	return memory.AnswerOutput{
		Answer:      strings.TrimSpace(resp.Text),
		SourceCount: len(results),
	}, nil
}

// buildAnswerPrompt assembles the question with retrieved facts as context.
func buildAnswerPrompt(question string, results []repository.SearchResult) string {
	var b strings.Builder
	b.WriteString("Saved facts:\n")
	if len(results) == 0 {
		b.WriteString("(none)\n")
	}
	for i, r := range results {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, r.Record.Timestamp, r.Record.Description)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
