package query

// TableState 明细表的交互状态
type TableState struct {
	Customer   string    `json:"customer"`
	Search     string    `json:"search"`
	SortColumn string    `json:"sortColumn"`
	Direction  Direction `json:"direction"`
	Page       int       `json:"page"`
}

// NewTableState 初始状态：无搜索、无排序、第 1 页
func NewTableState() *TableState {
	return &TableState{Direction: Asc, Page: 1}
}

// SetSearch 修改搜索词并回到第 1 页
func (s *TableState) SetSearch(term string) {
	s.Search = term
	s.Page = 1
}

// SetCustomer 切换客户筛选并回到第 1 页
func (s *TableState) SetCustomer(name string) {
	s.Customer = name
	s.Page = 1
}

// ToggleSort 同一列再次点击切换方向；换列时重置为升序。页码不变
func (s *TableState) ToggleSort(column string) {
	if column == s.SortColumn {
		s.Direction = s.Direction.Flip()
		return
	}
	s.SortColumn = column
	s.Direction = Asc
}

// SetPage 跳转页码（越界在查询时被限制）
func (s *TableState) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.Page = page
}

// Next 下一页
func (s *TableState) Next() { s.Page++ }

// Prev 上一页
func (s *TableState) Prev() {
	if s.Page > 1 {
		s.Page--
	}
}

// Request 当前状态对应的查询
func (s *TableState) Request() Request {
	return Request{
		Customer:   s.Customer,
		Search:     s.Search,
		SortColumn: s.SortColumn,
		Direction:  s.Direction,
		Page:       s.Page,
	}
}

// Sync 用查询结果中被限制后的页码回写状态
func (s *TableState) Sync(res Result) {
	s.Page = res.Page
}
