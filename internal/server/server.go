package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"resume/internal/config"
	"resume/internal/handler/api"
	"resume/internal/handler/page"
	"resume/internal/middleware"
)

// Server 应用服务器
type Server struct {
	echo   *echo.Echo
	config *config.Config
}

// New 创建新的服务器实例
func New(cfg *config.Config, pages *page.Handler, apis *api.Handler, assets fs.FS) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	s := &Server{
		echo:   e,
		config: cfg,
	}

	s.setupMiddleware()
	s.setupRoutes(pages, apis, assets)

	return s
}

// setupMiddleware 设置中间件
func (s *Server) setupMiddleware() {
	// 日志中间件
	s.echo.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true, // 将错误转发给全局错误处理程序，以便其决定适当的响应状态码
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error == nil {
				slog.LogAttrs(context.Background(), slog.LevelInfo, "REQ",
					slog.Int("status", v.Status),
					slog.String("uri", v.URI),
				)
			} else {
				slog.LogAttrs(context.Background(), slog.LevelError, "REQ_ERR",
					slog.Int("status", v.Status),
					slog.String("uri", v.URI),
					slog.String("err", v.Error.Error()),
				)
			}
			return nil
		},
	}))

	// 恢复中间件
	s.echo.Use(echomw.Recover())
}

// setupRoutes 设置路由，保留前缀先于页面路由注册
func (s *Server) setupRoutes(pages *page.Handler, apis *api.Handler, assets fs.FS) {
	apiGroup := s.echo.Group("/_api")
	apiGroup.Use(echomw.CORS())
	apis.RegisterRoutes(apiGroup)

	s.echo.GET(middleware.AssetPrefix+"*", middleware.Assets(assets))

	pages.RegisterRoutes(s.echo)
}

// Start 启动服务器
func (s *Server) Start() error {
	s.printStartupInfo()
	err := s.echo.Start(":" + s.config.Server.Port)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// printStartupInfo 打印启动信息
func (s *Server) printStartupInfo() {
	fmt.Println("个人主页服务启动中...")
	fmt.Printf("监听端口: %s\n", s.config.Server.Port)
	if s.config.Database.Configured() {
		fmt.Printf("访客数据库: %s\n", s.config.Database.Driver)
	} else {
		fmt.Println("访客数据库: 未配置，不记录访问")
	}
	fmt.Println("\n接口:")
	fmt.Println("   - GET    /_api/health          健康检查")
	fmt.Println("   - GET    /_api/visitors        访客统计")
	fmt.Println("   - GET    /_api/skills/level    技能熟练度")
	fmt.Println("   - GET    /_api/metrics         Prometheus 指标")
}

// Echo 返回 Echo 实例（用于扩展路由等）
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
