package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesanalytics/internal/query"
)

// 会话标识
const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "sid"
)

// sessionID 读取请求中的会话ID，缺失时分配新会话并回写 header 与 cookie
func (h *Handler) sessionID(c *gin.Context) string {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id, _ = c.Cookie(SessionCookie)
	}
	if id == "" {
		id = h.ctrl.NewSession()
		c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
	}
	c.Header(SessionHeader, id)
	return id
}

func (h *Handler) updateTable(c *gin.Context, fn func(*query.TableState)) {
	view, err := h.ctrl.UpdateTable(c.Request.Context(), h.sessionID(c), fn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetTable 当前会话的明细表
// GET /api/table
func (h *Handler) GetTable(c *gin.Context) {
	h.updateTable(c, nil)
}

// SearchTableRequest 搜索请求
type SearchTableRequest struct {
	Search string `json:"search"`
}

// SearchTable 修改搜索词（回到第 1 页）
// POST /api/table/search
func (h *Handler) SearchTable(c *gin.Context) {
	var req SearchTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	h.updateTable(c, func(s *query.TableState) { s.SetSearch(req.Search) })
}

// SortTableRequest 排序请求
type SortTableRequest struct {
	Column string `json:"column" binding:"required"`
}

// SortTable 点击列头：同列切换方向，换列为升序
// POST /api/table/sort
func (h *Handler) SortTable(c *gin.Context) {
	var req SortTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Column is required")
		return
	}
	h.updateTable(c, func(s *query.TableState) { s.ToggleSort(req.Column) })
}

// PageTableRequest 翻页请求：action 为 next/prev，否则跳转到 page
type PageTableRequest struct {
	Page   int    `json:"page"`
	Action string `json:"action"`
}

// PageTable 翻页
// POST /api/table/page
func (h *Handler) PageTable(c *gin.Context) {
	var req PageTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	var fn func(*query.TableState)
	switch req.Action {
	case "next":
		fn = (*query.TableState).Next
	case "prev":
		fn = (*query.TableState).Prev
	case "":
		fn = func(s *query.TableState) { s.SetPage(req.Page) }
	default:
		badRequest(c, "Unknown page action")
		return
	}
	h.updateTable(c, fn)
}

// SelectCustomerRequest 客户筛选请求，空字符串为全部客户
type SelectCustomerRequest struct {
	Customer string `json:"customer"`
}

// SelectCustomer 切换客户筛选（回到第 1 页）
// POST /api/table/customer
func (h *Handler) SelectCustomer(c *gin.Context) {
	var req SelectCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	h.updateTable(c, func(s *query.TableState) { s.SetCustomer(req.Customer) })
}
