package api

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resume/internal/analytics"
	"resume/internal/content"
	"resume/internal/session"
)

// Pinger 可选的存储健康检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler JSON 接口处理器
type Handler struct {
	log      *slog.Logger
	reporter *analytics.Reporter
	skills   *content.Skill
	sessions *session.Store
	db       Pinger // 未配置数据库时为 nil
}

// NewHandler 创建接口处理器
func NewHandler(log *slog.Logger, reporter *analytics.Reporter, skills *content.Skill, sessions *session.Store, db Pinger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, reporter: reporter, skills: skills, sessions: sessions, db: db}
}

// Response 通用响应结构
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RegisterRoutes 注册 /_api 下的路由
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/visitors", h.Visitors)
	g.GET("/skills/level", h.SkillLevel)
	g.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
