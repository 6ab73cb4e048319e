package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"salesanalytics/internal/apperr"
	"salesanalytics/internal/model"
	"salesanalytics/internal/parser"
	"salesanalytics/internal/store"
)

// Coordinator 导入协调器：校验 -> 规范化 -> 保存
type Coordinator struct {
	gateway store.Gateway
	exclude ExclusionSet
}

// NewCoordinator 创建导入协调器
func NewCoordinator(gateway store.Gateway, exclude ExclusionSet) *Coordinator {
	if exclude == nil {
		exclude = ExclusionSet{}
	}
	return &Coordinator{
		gateway: gateway,
		exclude: exclude,
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FileName string    // 原始文件名，用于扩展名校验与报告
	FilePath string    // Reader 为空时从该路径读取
	Reader   io.Reader // 上传流
	FileSize int64
	DryRun   bool // 只校验与规范化，不保存
}

// 事件类型
const (
	EventStart   = "start"
	EventInfo    = "info"
	EventWarning = "warning"
	EventDone    = "done"
	EventError   = "error"
)

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/warning/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// ImportReport 导入报告
type ImportReport struct {
	Filename     string         `json:"filename"`
	SheetName    string         `json:"sheetName"`
	Version      string         `json:"version,omitempty"`
	TotalRows    int            `json:"totalRows"`
	ImportedRows int            `json:"importedRows"`
	ExcludedRows int            `json:"excludedRows"`
	ExtraColumns []string       `json:"extraColumns,omitempty"`
	Saved        bool           `json:"saved"`
	Message      string         `json:"message"`
	Duration     time.Duration  `json:"duration"`
	Dataset      *model.Dataset `json:"-"`
}

// ErrorData error 事件的附加数据
type ErrorData struct {
	Code    string   `json:"code"`
	Missing []string `json:"missing,omitempty"`
}

// Import 执行导入，返回进度通道
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		emit := func(evt ProgressEvent) { c.sendProgress(progressChan, evt) }

		report, err := c.run(ctx, opts, emit)
		if err != nil {
			emit(errorEvent(err))
			return
		}
		emit(ProgressEvent{
			Type:      EventDone,
			Message:   report.Message,
			Data:      report,
			Timestamp: time.Now(),
		})
	}()

	return progressChan
}

// ImportSync 同步导入，直接返回报告或错误
func (c *Coordinator) ImportSync(ctx context.Context, opts ImportOptions) (*ImportReport, error) {
	return c.run(ctx, opts, func(ProgressEvent) {})
}

func errorEvent(err error) ProgressEvent {
	data := ErrorData{Code: apperr.CodeOf(err)}
	var mismatch *parser.SchemaMismatchError
	if errors.As(err, &mismatch) {
		data.Missing = mismatch.Missing
	}
	return ProgressEvent{
		Type:      EventError,
		Message:   apperr.UserMessage(err),
		Data:      data,
		Timestamp: time.Now(),
	}
}

// run 执行导入逻辑
func (c *Coordinator) run(ctx context.Context, opts ImportOptions, emit func(ProgressEvent)) (report *ImportReport, err error) {
	startTime := time.Now()
	name := opts.FileName
	if name == "" {
		name = filepath.Base(opts.FilePath)
	}

	emit(ProgressEvent{
		Type:    EventStart,
		Message: "Reading file",
		Data: map[string]string{
			"filename": name,
		},
		Timestamp: time.Now(),
	})

	logger, logID := c.openImportLog(ctx, name, opts.FileSize)
	defer func() {
		c.finishImportLog(ctx, logger, logID, report, err)
		if err != nil {
			log.Printf("[importer] %s failed: %v", name, err)
		}
	}()

	if err := parser.CheckFileName(name); err != nil {
		return nil, err
	}

	sheet, err := c.readSheet(opts)
	if err != nil {
		return nil, err
	}

	emit(ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("Sheet %q: %d rows, %d columns", sheet.Name, len(sheet.Records), len(sheet.Headers)),
		Data: map[string]interface{}{
			"sheet_name": sheet.Name,
			"rows":       len(sheet.Records),
			"columns":    len(sheet.Headers),
		},
		Timestamp: time.Now(),
	})

	// 表头校验不通过则整批拒绝
	if err := parser.ValidateColumns(sheet.Headers).Err(); err != nil {
		return nil, err
	}

	records, stats := NormalizeSheet(sheet, c.exclude)
	extra := extraColumns(sheet.Headers)

	if stats.Excluded > 0 {
		emit(ProgressEvent{
			Type:      EventWarning,
			Message:   fmt.Sprintf("Excluded %d records by customer name", stats.Excluded),
			Data:      stats,
			Timestamp: time.Now(),
		})
	}
	if len(extra) > 0 {
		emit(ProgressEvent{
			Type:      EventInfo,
			Message:   fmt.Sprintf("Kept %d additional columns", len(extra)),
			Data:      map[string]interface{}{"columns": extra},
			Timestamp: time.Now(),
		})
	}

	ds := &model.Dataset{
		ID:         model.CurrentDatasetID,
		Version:    uuid.NewString(),
		SourceFile: name,
		SavedAt:    time.Now().UTC(),
		Records:    records,
	}

	report = &ImportReport{
		Filename:     name,
		SheetName:    sheet.Name,
		Version:      ds.Version,
		TotalRows:    stats.Input,
		ImportedRows: stats.Output,
		ExcludedRows: stats.Excluded,
		ExtraColumns: extra,
		Dataset:      ds,
	}

	if !opts.DryRun {
		if err := c.gateway.Save(ctx, ds); err != nil {
			return nil, err
		}
		report.Saved = true
	}

	report.Message = fmt.Sprintf("Processed %d records successfully", len(records))
	report.Duration = time.Since(startTime)
	log.Printf("[importer] %s: %d rows, %d imported, %d excluded, version=%s, saved=%v (%v)",
		name, stats.Input, stats.Output, stats.Excluded, ds.Version, report.Saved, report.Duration)
	return report, nil
}

func (c *Coordinator) readSheet(opts ImportOptions) (*parser.Sheet, error) {
	r := opts.Reader
	if r == nil {
		if opts.FilePath == "" {
			return nil, apperr.New(apperr.CodeInvalidInput, "No file provided")
		}
		f, err := os.Open(opts.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parser.ReadFirstSheet(r)
}

// openImportLog 存储支持导入日志时记录一条 processing 日志
func (c *Coordinator) openImportLog(ctx context.Context, name string, size int64) (store.ImportLogger, int64) {
	logger, ok := c.gateway.(store.ImportLogger)
	if !ok {
		return nil, 0
	}
	id, err := logger.CreateImportLog(ctx, name, size)
	if err != nil {
		log.Printf("[importer] create import log: %v", err)
		return nil, 0
	}
	return logger, id
}

func (c *Coordinator) finishImportLog(ctx context.Context, logger store.ImportLogger, id int64, report *ImportReport, runErr error) {
	if logger == nil {
		return
	}
	entry := store.ImportLog{ID: id, Status: store.ImportStatusDone}
	if report != nil {
		entry.TotalRows = report.TotalRows
		entry.ImportedRows = report.ImportedRows
		entry.ExcludedRows = report.ExcludedRows
		entry.DatasetVersion = report.Version
	}
	if runErr != nil {
		entry.Status = store.ImportStatusFailed
		entry.ErrorMessage = runErr.Error()
	}
	if err := logger.FinishImportLog(context.WithoutCancel(ctx), entry); err != nil {
		log.Printf("[importer] finish import log: %v", err)
	}
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
