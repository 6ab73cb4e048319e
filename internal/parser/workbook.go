package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"salesanalytics/internal/model"
)

// Sheet 首个工作表解析结果
type Sheet struct {
	Name    string            `json:"name"`
	Headers []string          `json:"headers"`
	Records []model.RawRecord `json:"-"`
}

// ReadFirstSheet 从 xlsx 流中读取第一个工作表
func ReadFirstSheet(r io.Reader) (*Sheet, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer file.Close()

	return ReadWorkbook(file)
}

// ReadWorkbook 读取已打开工作簿的第一个工作表（其余工作表忽略）
func ReadWorkbook(file *excelize.File) (*Sheet, error) {
	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyInput
	}
	name := sheets[0]

	// 读取原始值，避免数字格式（千分位、日期格式）影响数值解析
	rows, err := file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}

	// 只有数值单元格转为数值，文本单元格即使形如数字也原样保留
	typed := func(row, col int, raw string) model.Value {
		ref, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return model.Text(raw)
		}
		typ, err := file.GetCellType(name, ref)
		if err != nil {
			return model.Text(raw)
		}
		return typedCell(typ, raw)
	}
	return buildSheet(name, rows, typed)
}

// FromRows 第一行为表头，其余每个非空行生成一条 RawRecord（每条记录都包含全部表头列）
// 没有单元格类型信息，非空单元格一律按文本保留
func FromRows(sheetName string, rows [][]string) (*Sheet, error) {
	return buildSheet(sheetName, rows, func(_, _ int, raw string) model.Value {
		return model.Text(raw)
	})
}

// cellConverter 将第 row 行第 col 列（从 0 开始）的非空原始文本转为 Value
type cellConverter func(row, col int, raw string) model.Value

func buildSheet(sheetName string, rows [][]string, convert cellConverter) (*Sheet, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	seen := map[string]int{}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = headerName(h, seen)
	}

	records := make([]model.RawRecord, 0, len(rows)-1)
	for r := 1; r < len(rows); r++ {
		row := rows[r]
		if isBlankRow(row) {
			continue
		}
		rec := make(model.RawRecord, len(headers))
		for i, h := range headers {
			if i < len(row) && row[i] != "" {
				rec[h] = convert(r, i, row[i])
			} else {
				rec[h] = model.Value{}
			}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	return &Sheet{
		Name:    sheetName,
		Headers: headers,
		Records: records,
	}, nil
}

// typedCell 按单元格类型转换：数值（含未标注类型）转数值，布尔转 true/false，其余保持文本
func typedCell(typ excelize.CellType, raw string) model.Value {
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return model.Number(f)
		}
	case excelize.CellTypeBool:
		if raw == "1" {
			return model.Text("true")
		}
		if raw == "0" {
			return model.Text("false")
		}
	}
	return model.Text(raw)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
