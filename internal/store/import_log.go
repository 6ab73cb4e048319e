package store

import (
	"context"
	"fmt"
	"time"
)

// 导入日志状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusDone       = "done"
	ImportStatusFailed     = "failed"
)

// ImportLog 一次导入的记录
type ImportLog struct {
	ID             int64  `json:"id" db:"id"`
	Filename       string `json:"filename" db:"filename"`
	FileSize       int64  `json:"fileSize" db:"file_size"`
	Status         string `json:"status" db:"status"`
	TotalRows      int    `json:"totalRows" db:"total_rows"`
	ImportedRows   int    `json:"importedRows" db:"imported_rows"`
	ExcludedRows   int    `json:"excludedRows" db:"excluded_rows"`
	DatasetVersion string `json:"datasetVersion" db:"dataset_version"`
	ErrorMessage   string `json:"errorMessage,omitempty" db:"error_message"`
	CreatedAt      string `json:"createdAt" db:"created_at"`
	CompletedAt    string `json:"completedAt,omitempty" db:"completed_at"`
}

// ImportLogger 可记录导入日志的存储（SQL 后端实现）
type ImportLogger interface {
	CreateImportLog(ctx context.Context, filename string, fileSize int64) (int64, error)
	FinishImportLog(ctx context.Context, log ImportLog) error
	ListImportLogs(ctx context.Context, limit int) ([]ImportLog, error)
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(ctx context.Context, filename string, fileSize int64) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO import_logs (filename, file_size, status, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), filename, fileSize, ImportStatusProcessing, now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	return id, nil
}

// FinishImportLog 完成导入日志更新（按 log.ID）
func (s *Store) FinishImportLog(ctx context.Context, log ImportLog) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE import_logs SET
			status = ?,
			total_rows = ?,
			imported_rows = ?,
			excluded_rows = ?,
			dataset_version = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`), log.Status, log.TotalRows, log.ImportedRows, log.ExcludedRows,
		log.DatasetVersion, log.ErrorMessage, now(), log.ID)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 最近的导入日志（新的在前）
func (s *Store) ListImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	logs := []ImportLog{}
	err := s.db.SelectContext(ctx, &logs, s.db.Rebind(`
		SELECT id, filename, file_size, status, total_rows, imported_rows, excluded_rows,
			dataset_version, error_message, created_at, completed_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	return logs, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
