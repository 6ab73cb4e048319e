// Package query 明细表的搜索、排序、分页
package query

import (
	"fmt"
	"sort"
	"strings"

	"salesanalytics/internal/calculator"
	"salesanalytics/internal/model"
)

// PageSize 每页行数
const PageSize = 10

// Direction 排序方向
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection 解析排序方向，无法识别时为升序
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Flip 反转方向
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Request 一次查询
type Request struct {
	Customer   string    `json:"customer,omitempty"` // 客户精确筛选，空为全部
	Search     string    `json:"search"`
	SortColumn string    `json:"sortColumn,omitempty"` // 空为不排序
	Direction  Direction `json:"direction"`
	Page       int       `json:"page"`
}

// Result 查询结果
type Result struct {
	Rows       []model.SalesRecord `json:"rows"`
	TotalCount int                 `json:"totalCount"`
	PageCount  int                 `json:"pageCount"` // 无数据时为 1
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	StartIndex int                 `json:"startIndex"` // 本页第一行在结果中的下标（0 起）
	EndIndex   int                 `json:"endIndex"`   // 本页最后一行之后的下标
	PageWindow []int               `json:"pageWindow"`
}

// Showing 分页提示文本
func (r Result) Showing() string {
	from := r.StartIndex + 1
	if r.TotalCount == 0 {
		from = 0
	}
	return fmt.Sprintf("Showing %d to %d of %d records", from, r.EndIndex, r.TotalCount)
}

// Run 客户筛选 -> 搜索 -> 排序 -> 分页；不修改 records
func Run(records []model.SalesRecord, req Request) Result {
	return Paginate(Select(records, req), req.Page)
}

// Select 客户筛选 -> 搜索 -> 排序，不分页（导出使用）
func Select(records []model.SalesRecord, req Request) []model.SalesRecord {
	rows := calculator.FilterByCustomer(records, req.Customer)
	rows = Filter(rows, req.Search)
	return Sort(rows, req.SortColumn, req.Direction)
}

// Filter 大小写不敏感的子串搜索，任一字段的字符串形式包含关键字即命中
// 返回新切片；关键字为空时原样返回
func Filter(records []model.SalesRecord, term string) []model.SalesRecord {
	if term == "" {
		return records
	}
	needle := strings.ToLower(term)

	out := make([]model.SalesRecord, 0)
	for i := range records {
		if matches(&records[i], needle) {
			out = append(out, records[i])
		}
	}
	return out
}

func matches(rec *model.SalesRecord, needle string) bool {
	found := false
	rec.Each(func(_ string, v model.Value) bool {
		if strings.Contains(strings.ToLower(v.String()), needle) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Sort 按单列稳定排序，返回新切片；column 为空时原样返回
func Sort(records []model.SalesRecord, column string, dir Direction) []model.SalesRecord {
	if column == "" {
		return records
	}

	// 记录体积较大，先对下标排序再一次性重排
	keys := make([]model.Value, len(records))
	idx := make([]int, len(records))
	for i := range records {
		keys[i], _ = records[i].Get(column)
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		c := Compare(keys[idx[i]], keys[idx[j]])
		if dir == Desc {
			c = -c
		}
		return c < 0
	})

	sorted := make([]model.SalesRecord, len(records))
	for i, k := range idx {
		sorted[i] = records[k]
	}
	return sorted
}

// PageCount ceil(total / PageSize)，至少为 1
func PageCount(total int) int {
	n := (total + PageSize - 1) / PageSize
	if n < 1 {
		return 1
	}
	return n
}

// ClampPage 将页码限制在 [1, pageCount]
func ClampPage(page, pageCount int) int {
	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate 取出第 page 页（页码先限制到有效范围）
func Paginate(records []model.SalesRecord, page int) Result {
	if records == nil {
		records = []model.SalesRecord{}
	}
	total := len(records)
	pageCount := PageCount(total)
	page = ClampPage(page, pageCount)

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}

	// 返回独立副本，调用方修改结果不会影响缓存的数据集
	rows := make([]model.SalesRecord, end-start)
	for i, rec := range records[start:end] {
		rows[i] = rec
		if rec.Extra != nil {
			rows[i].Extra = append([]model.NamedValue(nil), rec.Extra...)
		}
	}

	return Result{
		Rows:       rows,
		TotalCount: total,
		PageCount:  pageCount,
		Page:       page,
		PageSize:   PageSize,
		StartIndex: start,
		EndIndex:   end,
		PageWindow: PageWindow(page, pageCount),
	}
}

// PageWindow 分页按钮：最多 5 个页码，尽量以当前页居中
func PageWindow(current, total int) []int {
	n := total
	if n > 5 {
		n = 5
	}
	if n < 0 {
		n = 0
	}

	out := make([]int, n)
	for i := range out {
		switch {
		case total <= 5, current <= 3:
			out[i] = i + 1
		case current >= total-2:
			out[i] = total - 4 + i
		default:
			out[i] = current - 2 + i
		}
	}
	return out
}
