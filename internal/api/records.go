package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"salesanalytics/internal/exporter"
	"salesanalytics/internal/query"
)

// RecordsResponse 明细查询响应
type RecordsResponse struct {
	query.Result
	Columns []string   `json:"columns"`
	Cells   [][]string `json:"cells"`
	Showing string     `json:"showing"`
}

// requestFromQuery 由查询参数构造查询
func requestFromQuery(c *gin.Context) query.Request {
	return query.Request{
		Customer:   c.Query("customer"),
		Search:     c.Query("search"),
		SortColumn: c.Query("sort"),
		Direction:  query.ParseDirection(c.Query("dir")),
		Page:       parseIntWithDefault(c.Query("page"), 1),
	}
}

// ListRecords 无状态明细查询
// GET /api/records?customer=&search=&sort=&dir=&page=
func (h *Handler) ListRecords(c *gin.Context) {
	res, err := h.ctrl.Query(c.Request.Context(), requestFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	cells := make([][]string, len(res.Rows))
	for i := range res.Rows {
		cells[i] = query.Project(&res.Rows[i], query.DisplayColumns)
	}
	c.JSON(http.StatusOK, RecordsResponse{
		Result:  res,
		Columns: query.DisplayColumns,
		Cells:   cells,
		Showing: res.Showing(),
	})
}

// ExportRecords 导出筛选后的明细
// GET /api/records/export?customer=&search=&sort=&dir=
func (h *Handler) ExportRecords(c *gin.Context) {
	req := requestFromQuery(c)

	// 先检查数据集，避免写出响应头后才发现无数据
	if _, err := h.ctrl.Dataset(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", buildExportContentDisposition(req.Customer, time.Now()))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	done := func(p exporter.ProgressEvent) {
		if p.Stage == exporter.StageDone {
			log.Printf("[export] %d rows written (customer=%q search=%q)", p.Rows, req.Customer, req.Search)
		}
	}
	if _, err := h.ctrl.Export(c.Request.Context(), req, c.Writer, done); err != nil {
		respondError(c, err)
	}
}

func buildExportContentDisposition(customer string, now time.Time) string {
	name := "sales-records-" + now.Format("20060102")
	if customer != "" {
		name += "-" + sanitizeFileName(customer)
	}
	return fmt.Sprintf("attachment; filename=\"%s.xlsx\"", name)
}

// sanitizeFileName 只保留字母数字与 -_，其余替换为 _
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
