package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"salesanalytics/internal/model"
)

// 工作表名称
const (
	RecordsSheet   = "Records"
	CustomersSheet = "Customers"
)

// ExportOptions 导出选项
type ExportOptions struct {
	Records   []model.SalesRecord
	Columns   []string                  // 导出的列，为空时导出全部固定列 + Computed Price
	Customers []model.CustomerAggregate // 非空时追加客户汇总工作表
	Progress  ProgressFunc
}

// Export 生成工作簿；调用方负责 Close
func Export(opts ExportOptions) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	progress := newProgressTracker(opts.Progress, len(opts.Records))
	progress.emit(StageRecords, 0)
	if err := writeRecordsSheet(f, headerStyle, opts, progress); err != nil {
		_ = f.Close()
		return nil, err
	}

	if len(opts.Customers) > 0 {
		progress.emit(StageCustomers, recordsShare)
		if err := writeCustomersSheet(f, headerStyle, opts.Customers); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	progress.emit(StageDone, 100)
	return f, nil
}

// WriteTo 生成工作簿并写入 w
func WriteTo(w io.Writer, opts ExportOptions) error {
	f, err := Export(opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func exportColumns(columns []string) []string {
	if len(columns) > 0 {
		return columns
	}
	out := make([]string, 0, model.ColumnCount+1)
	out = append(out, model.Columns[:]...)
	return append(out, model.ComputedPriceColumn)
}

func writeRecordsSheet(f *excelize.File, headerStyle int, opts ExportOptions, progress *progressTracker) error {
	sw, err := f.NewStreamWriter(RecordsSheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	columns := exportColumns(opts.Columns)
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range opts.Records {
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			v, _ := opts.Records[i].Get(c)
			row[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		progress.row()
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	return nil
}

// cellValue 数值写数值、文本写文本、空值留空
func cellValue(v model.Value) interface{} {
	switch v.Kind {
	case model.KindNumber:
		return v.Num
	case model.KindText:
		return v.Str
	default:
		return nil
	}
}
