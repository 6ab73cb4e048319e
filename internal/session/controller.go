// Package session 持有数据集网关与明细表会话，串联导入、汇总、图表与查询
package session

import (
	"context"
	"io"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"salesanalytics/internal/apperr"
	"salesanalytics/internal/exporter"
	"salesanalytics/internal/importer"
	"salesanalytics/internal/model"
	"salesanalytics/internal/query"
	"salesanalytics/internal/store"
)

// MsgNoData 尚未导入数据时的提示
const MsgNoData = "No data available. Please upload a file first."

// ErrNoData 当前没有数据集
var ErrNoData = apperr.New(apperr.CodeNotFound, MsgNoData)

// statter 可以只读元信息的存储
type statter interface {
	Stat(ctx context.Context) (*store.Info, error)
}

// Controller 工作流控制器
type Controller struct {
	gateway  store.Gateway
	importer *importer.Coordinator
	tables   *tableStore

	loads singleflight.Group

	mu     sync.RWMutex
	cached *model.Dataset
}

// New 创建控制器；coordinator 为空时按无排除名单创建
func New(gateway store.Gateway, coordinator *importer.Coordinator) *Controller {
	if coordinator == nil {
		coordinator = importer.NewCoordinator(gateway, nil)
	}
	return &Controller{
		gateway:  gateway,
		importer: coordinator,
		tables:   newTableStore(DefaultSessionTTL),
	}
}

// Status 数据集状态
type Status struct {
	HasData bool        `json:"hasData"`
	Info    *store.Info `json:"info,omitempty"`
}

// Status 查询当前数据集状态
func (c *Controller) Status(ctx context.Context) (*Status, error) {
	if s, ok := c.gateway.(statter); ok {
		info, err := s.Stat(ctx)
		if err != nil {
			return nil, err
		}
		return &Status{HasData: info != nil, Info: info}, nil
	}

	ds, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return &Status{}, nil
	}
	return &Status{HasData: true, Info: &store.Info{
		Version:     ds.Version,
		SourceFile:  ds.SourceFile,
		SavedAt:     ds.SavedAt,
		RecordCount: ds.Len(),
	}}, nil
}

// Dataset 当前数据集；不存在时返回 ErrNoData
// 返回值与缓存共享，调用方不得修改
func (c *Controller) Dataset(ctx context.Context) (*model.Dataset, error) {
	ds, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNoData
	}
	return ds, nil
}

// load 读取当前数据集（可能为 nil），缓存按版本校验
func (c *Controller) load(ctx context.Context) (*model.Dataset, error) {
	c.mu.RLock()
	cached := c.cached
	c.mu.RUnlock()

	if s, ok := c.gateway.(statter); ok {
		info, err := s.Stat(ctx)
		if err != nil {
			return nil, err
		}
		if info == nil {
			c.setCached(nil)
			return nil, nil
		}
		if cached != nil && cached.Version == info.Version {
			return cached, nil
		}
	} else if cached != nil {
		return cached, nil
	}

	// 共享加载不随首个调用方的取消而失败
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.loads.Do(store.CurrentDatasetKey, func() (interface{}, error) {
		ds, err := c.gateway.Load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.setCached(ds)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	ds, _ := v.(*model.Dataset)
	return ds, nil
}

func (c *Controller) setCached(ds *model.Dataset) {
	c.mu.Lock()
	c.cached = ds
	c.mu.Unlock()
}

// Import 导入工作簿，转发进度事件；保存成功后刷新缓存
func (c *Controller) Import(ctx context.Context, opts importer.ImportOptions) <-chan importer.ProgressEvent {
	out := make(chan importer.ProgressEvent, 100)
	events := c.importer.Import(ctx, opts)

	go func() {
		defer close(out)
		for evt := range events {
			if evt.Type == importer.EventDone {
				if report, ok := evt.Data.(*importer.ImportReport); ok {
					c.afterImport(report)
				}
			}
			out <- evt
		}
	}()
	return out
}

// ImportSync 同步导入
func (c *Controller) ImportSync(ctx context.Context, opts importer.ImportOptions) (*importer.ImportReport, error) {
	report, err := c.importer.ImportSync(ctx, opts)
	if err != nil {
		return nil, err
	}
	c.afterImport(report)
	return report, nil
}

func (c *Controller) afterImport(report *importer.ImportReport) {
	if !report.Saved {
		return
	}
	c.setCached(report.Dataset)
	log.Printf("[session] dataset %s cached (%d records)", report.Version, report.Dataset.Len())
}

// Clear 清空数据集
func (c *Controller) Clear(ctx context.Context) error {
	if err := c.gateway.Clear(ctx); err != nil {
		return err
	}
	c.setCached(nil)
	log.Printf("[session] dataset cleared")
	return nil
}

// ImportLogs 最近的导入日志；存储不支持时返回空列表
func (c *Controller) ImportLogs(ctx context.Context, limit int) ([]store.ImportLog, error) {
	logger, ok := c.gateway.(store.ImportLogger)
	if !ok {
		return []store.ImportLog{}, nil
	}
	return logger.ListImportLogs(ctx, limit)
}

// Query 无状态查询
func (c *Controller) Query(ctx context.Context, req query.Request) (query.Result, error) {
	ds, err := c.Dataset(ctx)
	if err != nil {
		return query.Result{}, err
	}
	return query.Run(ds.Records, req), nil
}

// Export 将筛选、搜索、排序后的全部记录（不分页）以展示列导出为 xlsx
// progress 可为 nil
func (c *Controller) Export(ctx context.Context, req query.Request, w io.Writer, progress exporter.ProgressFunc) (int, error) {
	ds, err := c.Dataset(ctx)
	if err != nil {
		return 0, err
	}
	rows := query.Select(ds.Records, req)
	if err := exporter.WriteTo(w, exporter.ExportOptions{
		Records:  rows,
		Columns:  query.DisplayColumns,
		Progress: progress,
	}); err != nil {
		return 0, err
	}
	return len(rows), nil
}
