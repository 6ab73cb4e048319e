package store

import (
	"context"
	"fmt"
	"time"

	"salesanalytics/internal/apperr"
	"salesanalytics/internal/model"
)

// CurrentDatasetKey 当前数据集的固定逻辑键
const CurrentDatasetKey = model.CurrentDatasetID

// Gateway 当前数据集的持久化网关：整体保存、整体读取、清空
type Gateway interface {
	// Save 覆盖保存当前数据集
	Save(ctx context.Context, ds *model.Dataset) error
	// Load 读取当前数据集，不存在时返回 (nil, nil)
	Load(ctx context.Context) (*model.Dataset, error)
	// Clear 删除当前数据集，不存在时也返回 nil
	Clear(ctx context.Context) error
}

// Info 数据集元信息（不含记录）
type Info struct {
	Version     string    `json:"version" db:"version"`
	SourceFile  string    `json:"sourceFile" db:"source_file"`
	SavedAt     time.Time `json:"savedAt"`
	RecordCount int       `json:"recordCount" db:"record_count"`
}

// Backend 具体存储实现：Gateway + 元信息 + 关闭
type Backend interface {
	Gateway
	// Stat 读取元信息，不存在时返回 (nil, nil)
	Stat(ctx context.Context) (*Info, error)
	Close() error
}

// StorageFailure 存储层失败（读写、序列化、连接）
type StorageFailure struct {
	Op  string
	Err error
}

func (e *StorageFailure) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageFailure) Unwrap() error { return e.Err }

func (e *StorageFailure) ErrorCode() string { return apperr.CodeStorageFailure }

func fail(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageFailure{Op: op, Err: err}
}

func infoOf(ds *model.Dataset) *Info {
	return &Info{
		Version:     ds.Version,
		SourceFile:  ds.SourceFile,
		SavedAt:     ds.SavedAt,
		RecordCount: ds.Len(),
	}
}

// prepare 补全数据集的固定键与保存时间
func prepare(ds *model.Dataset) error {
	if ds == nil {
		return fmt.Errorf("dataset is nil")
	}
	ds.ID = CurrentDatasetKey
	if ds.SavedAt.IsZero() {
		ds.SavedAt = time.Now().UTC()
	}
	return nil
}
