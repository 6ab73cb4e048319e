package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusResponse 数据集状态响应
type StatusResponse struct {
	HasData     bool   `json:"hasData"`     // 是否已有数据
	RecordCount int    `json:"recordCount"` // 记录数
	SourceFile  string `json:"sourceFile"`  // 来源文件
	Version     string `json:"version"`     // 数据集版本
	SavedAt     string `json:"savedAt"`     // 保存时间
}

// GetStatus 获取数据集状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	st, err := h.ctrl.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := StatusResponse{HasData: st.HasData}
	if st.Info != nil {
		resp.RecordCount = st.Info.RecordCount
		resp.SourceFile = st.Info.SourceFile
		resp.Version = st.Info.Version
		if !st.Info.SavedAt.IsZero() {
			resp.SavedAt = st.Info.SavedAt.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListImports 最近的导入日志
// GET /api/imports?limit=
func (h *Handler) ListImports(c *gin.Context) {
	limit := parseIntWithDefault(c.Query("limit"), 20)
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	logs, err := h.ctrl.ImportLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}
