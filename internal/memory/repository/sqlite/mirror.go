package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"capture-recall/internal/memory"
	"capture-recall/internal/memory/repository"
	"capture-recall/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS memory_records (
	id          TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	timestamp   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memory_records_timestamp ON memory_records (timestamp DESC);
`

// Mirror is the SQLite-backed local mirror of the vector store. It holds a
// full copy of every record so listing and offline reads never touch the
// network.
type Mirror struct {
	db *sql.DB
}

var _ repository.MirrorRepository = (*Mirror)(nil)

// Open opens (or creates) the mirror database at path and applies the schema.
func Open(path string) (*Mirror, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}
	// SQLite allows one writer; serialize at the pool level.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply mirror schema: %w", err)
	}
	return &Mirror{db: db}, nil
}

// Close closes the underlying database.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// Upsert writes one record, overwriting by id.
func (m *Mirror) Upsert(ctx context.Context, record model.MemoryRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO memory_records (id, description, timestamp) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET description = excluded.description, timestamp = excluded.timestamp`,
		record.ID, record.Description, record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert mirror record %s: %w", record.ID, err)
	}
	return nil
}

// Delete removes one record. Deleting a missing id is not an error.
func (m *Mirror) Delete(ctx context.Context, id string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM memory_records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete mirror record %s: %w", id, err)
	}
	return nil
}

// Get returns one record by id.
func (m *Mirror) Get(ctx context.Context, id string) (model.MemoryRecord, error) {
	var record model.MemoryRecord
	err := m.db.QueryRowContext(ctx,
		`SELECT id, description, timestamp FROM memory_records WHERE id = ?`, id).
		Scan(&record.ID, &record.Description, &record.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MemoryRecord{}, memory.ErrNotFound
	}
	if err != nil {
		return model.MemoryRecord{}, fmt.Errorf("failed to read mirror record %s: %w", id, err)
	}
	return record, nil
}

// List returns all records, newest first.
func (m *Mirror) List(ctx context.Context) ([]model.MemoryRecord, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, description, timestamp FROM memory_records ORDER BY timestamp DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list mirror records: %w", err)
	}
	defer rows.Close()

	var records []model.MemoryRecord
	for rows.Next() {
		var record model.MemoryRecord
		if err := rows.Scan(&record.ID, &record.Description, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan mirror record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ReplaceAll swaps the entire mirror contents in one transaction. Either the
// new snapshot lands in full or the previous contents stay untouched.
func (m *Mirror) ReplaceAll(ctx context.Context, records []model.MemoryRecord) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin mirror rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM memory_records`); err != nil {
		return fmt.Errorf("failed to clear mirror: %w", err)
	}
	for _, record := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO memory_records (id, description, timestamp) VALUES (?, ?, ?)`,
			record.ID, record.Description, record.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to insert mirror record %s: %w", record.ID, err)
		}
	}
	return tx.Commit()
}
