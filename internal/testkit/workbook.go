// Package testkit 生成测试用的销售明细工作簿与记录
package testkit

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"salesanalytics/internal/model"
)

// Row 测试行：列名 -> 单元格值（string / int / float64）
type Row map[string]any

// FullHeader 返回完整的 96 列表头
func FullHeader() []string {
	h := make([]string, model.ColumnCount)
	copy(h, model.Columns[:])
	return h
}

// HeaderWithout 返回去掉指定列后的表头
func HeaderWithout(drop ...string) []string {
	skip := map[string]bool{}
	for _, d := range drop {
		skip[d] = true
	}
	var out []string
	for _, name := range model.Columns {
		if !skip[name] {
			out = append(out, name)
		}
	}
	return out
}

// Workbook 以 headers 为表头写入 rows，返回 xlsx 字节
// extraSheets 会追加在第一个工作表之后，用于验证只读取第一个工作表
func Workbook(headers []string, rows []Row, extraSheets ...string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for r, row := range rows {
		values := make([]interface{}, len(headers))
		for i, h := range headers {
			if v, ok := row[h]; ok {
				values[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	for _, name := range extraSheets {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(name, "A1", "ignored"); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// Record 构造一条 SalesRecord（ComputedPrice 直接给定）
func Record(customer string, computed float64, cells map[string]model.Value) model.SalesRecord {
	var rec model.SalesRecord
	rec.Cells[model.ColCustomerName] = model.Text(customer)
	for name, v := range cells {
		if c, ok := model.LookupColumn(name); ok {
			rec.Cells[c] = v
		} else {
			rec.Extra = append(rec.Extra, model.NamedValue{Name: name, Value: v})
		}
	}
	// 额外列按名称排序，保证测试结果稳定
	sort.Slice(rec.Extra, func(i, j int) bool { return rec.Extra[i].Name < rec.Extra[j].Name })
	rec.ComputedPrice = computed
	return rec
}

// Dataset 用给定记录构造数据集
func Dataset(records ...model.SalesRecord) *model.Dataset {
	return &model.Dataset{
		ID:      model.CurrentDatasetID,
		Version: "test",
		Records: records,
	}
}
