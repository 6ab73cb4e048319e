package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"salesanalytics/internal/model"
)

type datasetRow struct {
	Version     string `db:"version"`
	SourceFile  string `db:"source_file"`
	RecordCount int    `db:"record_count"`
	SavedAt     string `db:"saved_at"`
}

// Save 在事务内 upsert 当前数据集
func (s *Store) Save(ctx context.Context, ds *model.Dataset) error {
	if err := prepare(ds); err != nil {
		return fail("save", err)
	}
	payload, err := json.Marshal(ds)
	if err != nil {
		return fail("save", fmt.Errorf("failed to marshal dataset: %w", err))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fail("save", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	query := s.db.Rebind(`
		INSERT INTO datasets (id, version, source_file, record_count, saved_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			version = EXCLUDED.version,
			source_file = EXCLUDED.source_file,
			record_count = EXCLUDED.record_count,
			saved_at = EXCLUDED.saved_at,
			payload = EXCLUDED.payload`)

	_, err = tx.ExecContext(ctx, query,
		ds.ID,
		ds.Version,
		ds.SourceFile,
		ds.Len(),
		ds.SavedAt.UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	if err != nil {
		return fail("save", fmt.Errorf("failed to upsert dataset: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return fail("save", fmt.Errorf("failed to commit dataset: %w", err))
	}
	return nil
}

// Load 读取当前数据集
func (s *Store) Load(ctx context.Context) (*model.Dataset, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, s.db.Rebind(`SELECT payload FROM datasets WHERE id = ?`), CurrentDatasetKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fail("load", fmt.Errorf("failed to query dataset: %w", err))
	}

	var ds model.Dataset
	if err := json.Unmarshal([]byte(payload), &ds); err != nil {
		return nil, fail("load", fmt.Errorf("failed to unmarshal dataset: %w", err))
	}
	return &ds, nil
}

// Clear 删除当前数据集
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM datasets WHERE id = ?`), CurrentDatasetKey)
	if err != nil {
		return fail("clear", fmt.Errorf("failed to delete dataset: %w", err))
	}
	return nil
}

// Stat 只读元信息列
func (s *Store) Stat(ctx context.Context) (*Info, error) {
	var row datasetRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT version, source_file, record_count, saved_at
		FROM datasets
		WHERE id = ?`), CurrentDatasetKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fail("stat", fmt.Errorf("failed to query dataset info: %w", err))
	}

	info := &Info{
		Version:     row.Version,
		SourceFile:  row.SourceFile,
		RecordCount: row.RecordCount,
	}
	if t, err := time.Parse(time.RFC3339Nano, row.SavedAt); err == nil {
		info.SavedAt = t
	}
	return info, nil
}
