package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"

	"resume/internal/analytics"
	"resume/internal/config"
	"resume/internal/content"
	"resume/internal/geo"
	"resume/internal/handler/api"
	"resume/internal/handler/page"
	"resume/internal/logging"
	"resume/internal/server"
	"resume/internal/session"
	"resume/internal/store"
	"resume/internal/visitor"
	"resume/web"
)

const configPath = "config.toml"

func main() {
	// 加载配置
	cfg, created, err := config.LoadOrInit(configPath, true)
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if created {
		slog.Info("已生成默认配置文件", "path", configPath)
	}

	// 设置日志级别
	logging.SetLevelWithStr(cfg.Server.LogLevel)
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := build(ctx, cfg, log)
	if err != nil {
		fmt.Printf("❌ 初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("关闭服务器失败", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		fmt.Printf("❌ 服务器启动失败: %v\n", err)
		os.Exit(1)
	}
}

// build 组装存储、定位、内容与处理器
func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*server.Server, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, cleanup, fmt.Errorf("加载时区 %s 失败: %w", cfg.Server.Timezone, err)
	}
	clock := clockwork.NewRealClock()

	// 访客库：未配置或配置无效时不记录访问，统计页为空
	// 连接暂时不可用只影响当次请求，连接池会自动重连
	var db *store.SQLStore
	if cfg.Database.Configured() {
		db, err = store.Open(cfg.Database, cfg.Server.DataDir)
		if err != nil {
			log.Error("访客库配置无效，不记录访问", "driver", cfg.Database.Driver, "error", err)
			db = nil
		} else {
			closers = append(closers, db.Close)
			if err := db.Ping(ctx); err != nil {
				log.Warn("访客库暂不可用，将在访问时重试", "driver", cfg.Database.Driver, "error", err)
			}
		}
	} else {
		log.Warn("访客库凭据不完整，不记录访问")
	}

	var tracker *visitor.Tracker
	var reader analytics.Reader
	var pinger api.Pinger
	if db != nil {
		client, closeGeo, err := newGeoClient(cfg.Geo)
		if err != nil {
			return nil, cleanup, err
		}
		if closeGeo != nil {
			closers = append(closers, closeGeo)
		}
		tracker = visitor.NewTracker(log, client,
			visitor.NewKeyGenerator(clock, loc),
			visitor.NewRecorder(log, db))
		reader, pinger = db, db
	}
	reporter := analytics.NewReporter(log, reader, clock, loc, cfg.Server.WindowDays)

	// 内容与页面
	data, err := content.Load(web.Content())
	if err != nil {
		return nil, cleanup, err
	}
	renderer, err := content.NewRenderer(web.Templates())
	if err != nil {
		return nil, cleanup, err
	}
	reg := content.NewRegistry()
	content.RegisterDefaults(reg, renderer, data, clock, reporter)
	home, err := content.BuildHome(reg, data.Profile)
	if err != nil {
		return nil, cleanup, err
	}
	log.Debug("已注册页面", "pages", reg.Names())

	sessions := session.NewStore(cfg.Server.SessionSecret)
	labels := session.NewLabelCache()
	closers = append(closers, func() error { labels.Close(); return nil })

	pages := page.NewHandler(log, home, reg, renderer, tracker, sessions, labels)
	apis := api.NewHandler(log, reporter, data.Skills, sessions, pinger)
	return server.New(cfg, pages, apis, web.Assets()), cleanup, nil
}

// newGeoClient 按配置选择在线接口或本地 MMDB
func newGeoClient(cfg config.GeoConfig) (geo.Client, func() error, error) {
	switch cfg.Provider {
	case config.GeoProviderMMDB:
		c, err := geo.OpenMMDB(cfg.MMDBPath)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case config.GeoProviderHTTP, "":
		return geo.NewHTTPClient(cfg.Endpoint, cfg.Timeout), nil, nil
	default:
		return nil, nil, fmt.Errorf("不支持的定位方式: %s", cfg.Provider)
	}
}
