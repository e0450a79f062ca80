package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// 数据库驱动
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// 地理位置查询来源
const (
	GeoProviderHTTP = "http"
	GeoProviderMMDB = "mmdb"
)

// Config 服务器配置
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Geo      GeoConfig      `toml:"geo"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port          string `toml:"port"`
	LogLevel      string `toml:"log_level"`
	DataDir       string `toml:"data_dir"`       // 数据目录（SQLite 文件等）
	Timezone      string `toml:"timezone"`       // 访问时间分桶使用的固定时区
	SessionSecret string `toml:"session_secret"` // Cookie 会话签名密钥
	WindowDays    int    `toml:"window_days"`    // 每日访问曲线的最小天数
}

// DatabaseConfig 访客库连接参数
// 对应环境变量 DATABASE_HOSTNAME / DATABASE_USERNAME / DATABASE_PASSWORD / DATABASE_SCHEMA
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	Hostname string `toml:"hostname"`
	Port     string `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Schema   string `toml:"schema"`
}

// GeoConfig 地理位置查询配置
type GeoConfig struct {
	Provider string        `toml:"provider"`
	Endpoint string        `toml:"endpoint"`
	MMDBPath string        `toml:"mmdb_path"`
	Timeout  time.Duration `toml:"timeout"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       "8050",
			LogLevel:   "info",
			DataDir:    "./data",
			Timezone:   "America/Toronto",
			WindowDays: 30,
		},
		Database: DatabaseConfig{
			Driver: DriverPostgres,
			Port:   "5432",
		},
		Geo: GeoConfig{
			Provider: GeoProviderHTTP,
			Endpoint: "https://geolocation-db.com/json",
			Timeout:  3 * time.Second,
		},
	}
}

// Configured 访客库凭据是否齐全；缺少任意一项时跳过访问记录
func (d DatabaseConfig) Configured() bool {
	if d.Driver == DriverSQLite {
		return d.Schema != ""
	}
	return d.Hostname != "" && d.Username != "" && d.Password != "" && d.Schema != ""
}

// LoadOrInit 从 TOML 加载配置，如果文件不存在则创建默认配置
func LoadOrInit(path string, envOverride bool) (*Config, bool, error) {
	created := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// 凭据只来自环境，不写入文件
		if err := writeToml(path, Default()); err != nil {
			slog.Warn("写入配置文件失败，将仅使用内存配置", "path", path, "error", err)
		} else {
			created = true
		}
	}

	cfg, err := Load(path, envOverride)
	return cfg, created, err
}

// Load 只读加载配置，文件不存在时使用默认值，不创建文件
func Load(path string, envOverride bool) (*Config, error) {
	// .env 仅补充进程环境，不覆盖已有变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("读取 .env 失败", "error", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if envOverride {
		applyEnvOverrides(cfg)
	}
	return cfg, nil
}

// Save 保存配置到文件
func (c *Config) Save(path string) error {
	return writeToml(path, c)
}

func writeToml[T any](path string, cfg T) error {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := dirOf(path); dir != "" {
		_ = os.MkdirAll(dir, 0755)
	}
	return os.WriteFile(path, b, 0644)
}

func dirOf(path string) string {
	i := strings.LastIndexAny(path, "/\\")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// applyEnvOverrides 读取环境变量并覆盖配置 不回写文件
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("RESUME_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("RESUME_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("RESUME_DATA_DIR"); v != "" {
		cfg.Server.DataDir = v
	}
	if v := os.Getenv("RESUME_TIMEZONE"); v != "" {
		cfg.Server.Timezone = v
	}
	if v := os.Getenv("RESUME_SESSION_SECRET"); v != "" {
		cfg.Server.SessionSecret = v
	}

	// Database
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_HOSTNAME"); v != "" {
		cfg.Database.Hostname = v
	}
	if v := os.Getenv("DATABASE_PORT"); v != "" {
		cfg.Database.Port = v
	}
	if v := os.Getenv("DATABASE_USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DATABASE_SCHEMA"); v != "" {
		cfg.Database.Schema = v
	}

	// Geo
	if v := os.Getenv("RESUME_GEO_PROVIDER"); v != "" {
		cfg.Geo.Provider = v
	}
	if v := os.Getenv("RESUME_GEO_ENDPOINT"); v != "" {
		cfg.Geo.Endpoint = v
	}
	if v := os.Getenv("RESUME_GEO_MMDB"); v != "" {
		cfg.Geo.MMDBPath = v
	}
}
