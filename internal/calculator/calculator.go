package calculator

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"salesanalytics/internal/model"
)

// Indicator 指标定义（汇总卡片）
type Indicator struct {
	ID    string  `json:"id"`    // 指标ID
	Name  string  `json:"name"`  // 指标名称
	Value float64 `json:"value"` // 指标值
	Unit  string  `json:"unit"`  // 单位 (如 ₹、个)
}

// Summary 数据集汇总
type Summary struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalCustomers int     `json:"totalCustomers"`
	TotalRecords   int     `json:"totalRecords"`
}

// Aggregate 按客户汇总 ComputedPrice，按总额降序；总额相同保持首次出现顺序
// 客户名缺失的记录归入 "" 分组
func Aggregate(records []model.SalesRecord) []model.CustomerAggregate {
	index := make(map[string]int)
	totals := make([]decimal.Decimal, 0)
	out := make([]model.CustomerAggregate, 0)

	for i := range records {
		name := records[i].CustomerName()
		idx, ok := index[name]
		if !ok {
			idx = len(out)
			index[name] = idx
			out = append(out, model.CustomerAggregate{CustomerName: name})
			totals = append(totals, decimal.Zero)
		}
		// 十进制累加，结果与记录顺序无关
		if p := records[i].ComputedPrice; !math.IsInf(p, 0) && !math.IsNaN(p) {
			totals[idx] = totals[idx].Add(decimal.NewFromFloat(p))
		}
		out[idx].RecordCount++
	}

	for i := range out {
		out[i].TotalComputedPrice = clampFinite(totals[i].InexactFloat64())
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalComputedPrice > out[j].TotalComputedPrice
	})
	return out
}

// Summarize 由客户汇总计算总收入、客户数、记录数
func Summarize(aggs []model.CustomerAggregate) Summary {
	s := Summary{TotalCustomers: len(aggs)}
	if len(aggs) == 0 {
		return s
	}

	totals := make(stats.Float64Data, len(aggs))
	for i, a := range aggs {
		totals[i] = a.TotalComputedPrice
		s.TotalRecords += a.RecordCount
	}
	sum, err := stats.Sum(totals)
	if err == nil {
		s.TotalRevenue = clampFinite(sum)
	}
	return s
}

// clampFinite 超出 float64 范围的总额截断为 ±MaxFloat64
func clampFinite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

// Indicators 汇总卡片：总收入（取整）、客户数、记录数
func (s Summary) Indicators() []Indicator {
	return []Indicator{
		{ID: "total_revenue", Name: "Total Revenue", Value: math.Round(s.TotalRevenue), Unit: "₹"},
		{ID: "total_customers", Name: "Total Customers", Value: float64(s.TotalCustomers)},
		{ID: "total_records", Name: "Total Records", Value: float64(s.TotalRecords)},
	}
}

// FilterByCustomer 精确匹配客户名；name 为空时返回全部记录
func FilterByCustomer(records []model.SalesRecord, name string) []model.SalesRecord {
	if name == "" {
		return records
	}
	out := make([]model.SalesRecord, 0)
	for i := range records {
		if records[i].CustomerName() == name {
			out = append(out, records[i])
		}
	}
	return out
}

// Top 前 n 个客户（n <= 0 返回全部）
func Top(aggs []model.CustomerAggregate, n int) []model.CustomerAggregate {
	if n <= 0 || n >= len(aggs) {
		return aggs
	}
	return aggs[:n]
}

// Find 按客户名查找汇总
func Find(aggs []model.CustomerAggregate, name string) (model.CustomerAggregate, bool) {
	for _, a := range aggs {
		if a.CustomerName == name {
			return a, true
		}
	}
	return model.CustomerAggregate{}, false
}
