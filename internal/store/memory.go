package store

import (
	"context"
	"sync"

	"salesanalytics/internal/model"
)

// MemoryStore 内存存储，进程退出即丢失
type MemoryStore struct {
	current *model.Dataset
	mu      sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save 保存深拷贝，调用方之后修改 ds 不影响已保存数据
func (s *MemoryStore) Save(ctx context.Context, ds *model.Dataset) error {
	if err := ctx.Err(); err != nil {
		return fail("save", err)
	}
	if err := prepare(ds); err != nil {
		return fail("save", err)
	}
	cp := ds.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = cp
	return nil
}

// Load 返回深拷贝
func (s *MemoryStore) Load(ctx context.Context) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fail("load", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone(), nil
}

// Clear 清空
func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fail("clear", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return nil
}

// Stat 元信息
func (s *MemoryStore) Stat(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, fail("stat", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, nil
	}
	return infoOf(s.current), nil
}

// Close 无资源需要释放
func (s *MemoryStore) Close() error { return nil }
