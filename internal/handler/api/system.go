package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health 健康检查，存储不可用时仍返回 200，由 database 字段说明
func (h *Handler) Health(c echo.Context) error {
	database := "disabled"
	if h.db != nil {
		database = "ok"
		if err := h.db.Ping(c.Request().Context()); err != nil {
			h.log.Warn("数据库健康检查失败", "error", err)
			database = "unavailable"
		}
	}
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data: map[string]any{
			"status":    "healthy",
			"database":  database,
			"timestamp": time.Now(),
		},
	})
}
