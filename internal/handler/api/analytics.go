package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"resume/internal/analytics"
)

// Visitors 访客统计：汇总、每日曲线、地图标记与表格行
// 支持与子页面相同的排序参数 ?sort=<列名>&order=desc
func (h *Handler) Visitors(c echo.Context) error {
	report := h.reporter.Report(c.Request().Context())
	column := c.QueryParam("sort")
	if err := analytics.SortRows(report.Rows, column, c.QueryParam("order") == "desc"); err != nil {
		return c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: fmt.Sprintf("参数错误: %v", err),
		})
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: report})
}
