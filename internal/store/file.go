package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"salesanalytics/internal/model"
)

// FileStore 以单个 JSON 文件保存当前数据集
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore 创建文件存储，path 为 JSON 文件路径
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is empty")
	}
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path 文件路径
func (s *FileStore) Path() string { return s.path }

// Save 先写临时文件再 rename，读方只会看到完整的新旧文件之一
func (s *FileStore) Save(ctx context.Context, ds *model.Dataset) error {
	if err := ctx.Err(); err != nil {
		return fail("save", err)
	}
	if err := prepare(ds); err != nil {
		return fail("save", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fail("save", writeJSONAtomic(s.path, ds))
}

// Load 读取并解析整个文件
func (s *FileStore) Load(ctx context.Context) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fail("load", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var ds model.Dataset
	if err := readJSON(s.path, &ds); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fail("load", err)
	}
	return &ds, nil
}

// Clear 删除文件
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fail("clear", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fail("clear", err)
	}
	return nil
}

// Stat 只取出头部字段与记录数，不反序列化记录
func (s *FileStore) Stat(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, fail("stat", err)
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fail("stat", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fail("stat", fmt.Errorf("invalid JSON in %s", s.path))
	}

	res := gjson.GetManyBytes(data, "version", "sourceFile", "savedAt", "records.#")
	info := &Info{
		Version:     res[0].String(),
		SourceFile:  res[1].String(),
		RecordCount: int(res[3].Int()),
	}
	if ts := res[2].String(); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			info.SavedAt = t
		}
	}
	return info, nil
}

// Close 无资源需要释放
func (s *FileStore) Close() error { return nil }

func ensureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func writeJSONAtomic(path string, v interface{}) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
