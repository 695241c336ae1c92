package mirror

import (
	"context"

	"capture-recall/internal/memory/repository"
	"capture-recall/internal/model"
	pkgLog "capture-recall/pkg/log"
)

// Sync keeps the local mirror trailing the vector store. Mutations are
// applied best-effort: a mirror failure is logged and swallowed, never
// surfaced to the caller, because the vector store already holds the truth
// and a rebuild can reconcile at any time.
type Sync struct {
	vectors repository.VectorRepository
	mirror  repository.MirrorRepository
	l       pkgLog.Logger

	// changed carries a coalesced dirty signal. Buffer of one: a pending
	// notification absorbs further ones until consumed.
	changed chan struct{}
}

// New creates a mirror sync service.
func New(vectors repository.VectorRepository, mirror repository.MirrorRepository, l pkgLog.Logger) *Sync {
	return &Sync{
		vectors: vectors,
		mirror:  mirror,
		l:       l,
		changed: make(chan struct{}, 1),
	}
}

// ApplyUpsert propagates a committed upsert to the mirror, best-effort.
func (s *Sync) ApplyUpsert(ctx context.Context, record model.MemoryRecord) {
	if err := s.mirror.Upsert(ctx, record); err != nil {
		s.l.Warnf(ctx, "mirror sync: upsert %s failed, mirror is stale until rebuild: %v", record.ID, err)
		return
	}
	s.notify()
}

// ApplyDelete propagates a committed delete to the mirror, best-effort.
func (s *Sync) ApplyDelete(ctx context.Context, id string) {
	if err := s.mirror.Delete(ctx, id); err != nil {
		s.l.Warnf(ctx, "mirror sync: delete %s failed, mirror is stale until rebuild: %v", id, err)
		return
	}
	s.notify()
}

// Rebuild replaces the whole mirror with the current vector-store contents.
func (s *Sync) Rebuild(ctx context.Context) error {
	records, err := s.vectors.ListAll(ctx)
	if err != nil {
		return err
	}
	if err := s.mirror.ReplaceAll(ctx, records); err != nil {
		return err
	}
	s.l.Infof(ctx, "mirror sync: rebuilt mirror with %d records", len(records))
	s.notify()
	return nil
}

// Changed returns a channel that receives a coalesced signal after mirror
// mutations. Consumers re-read the mirror on each signal.
func (s *Sync) Changed() <-chan struct{} {
	return s.changed
}

func (s *Sync) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
