package importer

import (
	"math"
	"sort"

	"salesanalytics/internal/model"
	"salesanalytics/internal/parser"
)

// ExclusionSet 需要在导入时剔除的客户名称（精确匹配）
type ExclusionSet map[string]struct{}

// NewExclusionSet 由名称列表构造剔除集合
func NewExclusionSet(names ...string) ExclusionSet {
	set := make(ExclusionSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Contains 是否需要剔除
func (s ExclusionSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// NormalizeStats 规范化统计
type NormalizeStats struct {
	Input    int `json:"input"`
	Excluded int `json:"excluded"`
	Output   int `json:"output"`
}

// Normalize 剔除排除客户并计算 ComputedPrice，保持原有顺序，不会失败
func Normalize(raw []model.RawRecord, excl ExclusionSet) []model.SalesRecord {
	out, _ := NormalizeWithStats(raw, excl)
	return out
}

// NormalizeWithStats 同 Normalize，并返回统计信息
func NormalizeWithStats(raw []model.RawRecord, excl ExclusionSet) ([]model.SalesRecord, NormalizeStats) {
	return normalize(raw, excl, nil)
}

// NormalizeSheet 规范化整张工作表，额外列按表头顺序保留
func NormalizeSheet(sheet *parser.Sheet, excl ExclusionSet) ([]model.SalesRecord, NormalizeStats) {
	return normalize(sheet.Records, excl, sheet.Headers)
}

func normalize(raw []model.RawRecord, excl ExclusionSet, headers []string) ([]model.SalesRecord, NormalizeStats) {
	stats := NormalizeStats{Input: len(raw)}
	extraOrder := extraColumns(headers)
	out := make([]model.SalesRecord, 0, len(raw))

	for _, row := range raw {
		if excl.Contains(row[model.ColCustomerName.Name()].String()) {
			stats.Excluded++
			continue
		}
		out = append(out, toSalesRecord(row, extraOrder))
	}

	stats.Output = len(out)
	return out, stats
}

// ComputePrice ComputedPrice = (Quantity x Price 或 0) * (Ex Rate 或 1)
// 与表格数据“宽松取数”的口径一致：无法解析或为 0 的汇率按 1 处理
// 乘积溢出时记为 0，保证结果始终是有限值
func ComputePrice(quantityXPrice, exRate model.Value) float64 {
	qp, ok := parser.ParseNumber(quantityXPrice)
	if !ok {
		qp = 0
	}
	rate, ok := parser.ParseNumber(exRate)
	if !ok || rate == 0 {
		rate = 1
	}
	price := qp * rate
	if math.IsInf(price, 0) || math.IsNaN(price) {
		return 0
	}
	return price
}

func toSalesRecord(row model.RawRecord, extraOrder []string) model.SalesRecord {
	var rec model.SalesRecord
	for name, v := range row {
		if c, ok := model.LookupColumn(name); ok {
			rec.Cells[c] = v
		}
	}

	if extraOrder == nil {
		extraOrder = extraColumns(sortedKeys(row))
	}
	for _, name := range extraOrder {
		if v, ok := row[name]; ok {
			rec.Extra = append(rec.Extra, model.NamedValue{Name: name, Value: v})
		}
	}

	rec.ComputedPrice = ComputePrice(rec.Cells[model.ColQuantityXPrice], rec.Cells[model.ColExRate])
	return rec
}

// extraColumns 过滤出非固定列；文件中自带的 Computed Price 列会被重新计算覆盖
func extraColumns(headers []string) []string {
	if headers == nil {
		return nil
	}
	out := make([]string, 0)
	for _, name := range headers {
		if _, ok := model.LookupColumn(name); ok || name == model.ComputedPriceColumn {
			continue
		}
		out = append(out, name)
	}
	return out
}

func sortedKeys(row model.RawRecord) []string {
	keys := row.Columns()
	sort.Strings(keys)
	return keys
}
