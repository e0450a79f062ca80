package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"resume/internal/config"
	"resume/internal/visitor"
)

var ErrNotFound = errors.New("visitor not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS visitors (
	id TEXT PRIMARY KEY,
	country TEXT NOT NULL,
	state TEXT NOT NULL,
	city TEXT NOT NULL,
	postal TEXT NOT NULL,
	longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
	latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
	visits INTEGER NOT NULL DEFAULT 1
)`

// 冲突时只增加计数，位置字段保持首次写入的快照
const upsertSQL = `
INSERT INTO visitors (id, country, state, city, postal, longitude, latitude, visits)
VALUES (?, ?, ?, ?, ?, ?, ?, 1)
ON CONFLICT (id) DO UPDATE SET visits = visitors.visits + 1
RETURNING visits`

const selectColumns = `id, country, state, city, postal, longitude, latitude, visits`

// SQLStore 访客表，支持 Postgres 与 SQLite
type SQLStore struct {
	db      *sql.DB
	dialect string

	mu    sync.Mutex
	ready bool // 表已存在
}

// Open 按配置打开访客库；不建立连接，建表在首次读写时进行
func Open(cfg config.DatabaseConfig, dataDir string) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres, "":
		db, err = sql.Open("pgx", postgresDSN(cfg))
		if err != nil {
			return nil, fmt.Errorf("打开 Postgres 失败: %w", err)
		}
		return New(db, config.DriverPostgres), nil
	case config.DriverSQLite:
		path := cfg.Schema
		if !filepath.IsAbs(path) && dataDir != "" {
			path = filepath.Join(dataDir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("创建 SQLite 目录失败: %w", err)
		}
		db, err = sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
		if err != nil {
			return nil, fmt.Errorf("打开 SQLite 失败: %w", err)
		}
		db.SetMaxOpenConns(1)
		return New(db, config.DriverSQLite), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// New 包装已打开的连接
func New(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// ensureSchema 建表；失败时下次调用重试，数据库恢复后无需重启
func (s *SQLStore) ensureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("创建 visitors 表失败: %w", err)
	}
	s.ready = true
	return nil
}

func postgresDSN(cfg config.DatabaseConfig) string {
	host := cfg.Hostname
	if cfg.Port != "" {
		host = net.JoinHostPort(cfg.Hostname, cfg.Port)
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   host,
		Path:   "/" + cfg.Schema,
	}
	return u.String()
}

// Upsert 在单个事务内原子地插入或加一，返回更新后的访问次数
func (s *SQLStore) Upsert(ctx context.Context, rec visitor.Record) (int, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("开启事务失败: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var visits int
	err = tx.QueryRowContext(ctx, s.rebind(upsertSQL),
		rec.ID, rec.Country, rec.State, rec.City, rec.Postal, rec.Longitude, rec.Latitude,
	).Scan(&visits)
	if err != nil {
		return 0, fmt.Errorf("写入访客失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("提交事务失败: %w", err)
	}
	return visits, nil
}

// Get 按 ID 读取一行
func (s *SQLStore) Get(ctx context.Context, id string) (visitor.Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return visitor.Record{}, err
	}
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+selectColumns+` FROM visitors WHERE id = ?`), id)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return visitor.Record{}, ErrNotFound
	}
	if err != nil {
		return visitor.Record{}, fmt.Errorf("读取访客失败: %w", err)
	}
	return rec, nil
}

// All 全表扫描，按 ID 排序
func (s *SQLStore) All(ctx context.Context) ([]visitor.Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM visitors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("查询访客失败: %w", err)
	}
	defer rows.Close()

	var records []visitor.Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("读取访客行失败: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历访客失败: %w", err)
	}
	return records, nil
}

// Ping 检查连接
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭连接
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (visitor.Record, error) {
	var rec visitor.Record
	err := row.Scan(&rec.ID, &rec.Country, &rec.State, &rec.City, &rec.Postal,
		&rec.Longitude, &rec.Latitude, &rec.Visits)
	return rec, err
}

// rebind 将 ? 占位符转换为 Postgres 的 $n
func (s *SQLStore) rebind(query string) string {
	if s.dialect != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
