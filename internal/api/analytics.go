package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAnalytics 汇总卡片、客户排行、图表纵轴与柱子
// GET /api/analytics?customer=
func (h *Handler) GetAnalytics(c *gin.Context) {
	a, err := h.ctrl.Analytics(c.Request.Context(), c.Query("customer"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
