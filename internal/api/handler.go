// Package api 销售分析 HTTP API
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salesanalytics/internal/apperr"
	"salesanalytics/internal/session"
)

// DefaultMaxUploadMB 上传文件大小上限（MB）
const DefaultMaxUploadMB = 50

// Handler API 处理器
type Handler struct {
	ctrl           *session.Controller
	maxUploadBytes int64
}

// NewHandler 创建 API 处理器；maxUploadMB <= 0 时使用默认上限
func NewHandler(ctrl *session.Controller, maxUploadMB int) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = DefaultMaxUploadMB
	}
	return &Handler{
		ctrl:           ctrl,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 数据集
	router.GET("/status", h.GetStatus)
	router.POST("/upload", h.Upload)
	router.DELETE("/dataset", h.ClearDataset)
	router.GET("/imports", h.ListImports)

	// 汇总与图表
	router.GET("/analytics", h.GetAnalytics)

	// 明细查询
	router.GET("/records", h.ListRecords)
	router.GET("/records/export", h.ExportRecords)

	// 明细表会话
	router.GET("/table", h.GetTable)
	router.POST("/table/search", h.SearchTable)
	router.POST("/table/sort", h.SortTable)
	router.POST("/table/page", h.PageTable)
	router.POST("/table/customer", h.SelectCustomer)
}

// respondError 按错误码输出 {"error", "code"}
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error": apperr.UserMessage(err),
		"code":  apperr.CodeOf(err),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": apperr.CodeInvalidInput})
}

func parseIntWithDefault(v string, d int) int {
	if v == "" {
		return d
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return i
}
