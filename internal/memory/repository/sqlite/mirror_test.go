package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"capture-recall/internal/memory"
	"capture-recall/internal/model"
)

func openTestMirror(t *testing.T) *Mirror {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMirror_UpsertGet(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	record := model.MemoryRecord{ID: "r1", Description: "locker code is 4417", Timestamp: "2026-08-30T10:00:00Z"}
	if err := m.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := m.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != record {
		t.Errorf("Get() = %+v, want %+v", got, record)
	}

	t.Run("overwrites by id", func(t *testing.T) {
		record.Description = "locker code is 9900"
		if err := m.Upsert(ctx, record); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		got, err := m.Get(ctx, "r1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Description != "locker code is 9900" {
			t.Errorf("Get().Description = %q, want overwrite", got.Description)
		}
		records, err := m.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 1 {
			t.Errorf("List() returned %d records, want 1", len(records))
		}
	})
}

func TestMirror_GetMissing(t *testing.T) {
	m := openTestMirror(t)

	_, err := m.Get(context.Background(), "nope")
	if !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMirror_Delete(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	if err := m.Upsert(ctx, model.MemoryRecord{ID: "r1", Description: "x", Timestamp: "2026-08-30T10:00:00Z"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := m.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.Get(ctx, "r1"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// Missing id is not an error.
	if err := m.Delete(ctx, "r1"); err != nil {
		t.Errorf("Delete() missing id error = %v", err)
	}
}

func TestMirror_ListNewestFirst(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	for _, r := range []model.MemoryRecord{
		{ID: "old", Description: "a", Timestamp: "2026-08-28T10:00:00Z"},
		{ID: "new", Description: "b", Timestamp: "2026-08-30T10:00:00Z"},
		{ID: "mid", Description: "c", Timestamp: "2026-08-29T10:00:00Z"},
	} {
		if err := m.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert(%s) error = %v", r.ID, err)
		}
	}

	records, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"new", "mid", "old"}
	if len(records) != len(want) {
		t.Fatalf("List() returned %d records, want %d", len(records), len(want))
	}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, records[i].ID, id)
		}
	}
}

func TestMirror_ReplaceAll(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	if err := m.Upsert(ctx, model.MemoryRecord{ID: "stale", Description: "gone", Timestamp: "2026-08-28T10:00:00Z"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	snapshot := []model.MemoryRecord{
		{ID: "a", Description: "one", Timestamp: "2026-08-30T10:00:00Z"},
		{ID: "b", Description: "two", Timestamp: "2026-08-30T11:00:00Z"},
	}
	if err := m.ReplaceAll(ctx, snapshot); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	records, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
	if _, err := m.Get(ctx, "stale"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("stale record survived ReplaceAll: err = %v", err)
	}
}
