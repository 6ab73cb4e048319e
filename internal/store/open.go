package store

import (
	"fmt"
	"path/filepath"
)

// 非 SQL 驱动
const (
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Drivers 全部可选驱动
var Drivers = []string{DriverSQLite3, DriverSQLite, DriverPostgres, DriverFile, DriverMemory}

// Options 打开存储的参数
type Options struct {
	Driver  string
	DSN     string // 为空时按 DataDir 生成默认路径（postgres 必填）
	DataDir string
}

// Open 按驱动创建存储后端
func Open(opts Options) (Backend, error) {
	switch opts.Driver {
	case DriverSQLite3, DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = filepath.Join(opts.DataDir, "sales.db")
		}
		return asBackend(New(opts.Driver, dsn))
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires a dsn")
		}
		return asBackend(New(opts.Driver, opts.DSN))
	case DriverFile:
		path := opts.DSN
		if path == "" {
			path = filepath.Join(opts.DataDir, "current_data.json")
		}
		fs, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %q", opts.Driver)
	}
}

// asBackend 避免把 nil *Store 装进非 nil 接口
func asBackend(st *Store, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return st, nil
}
