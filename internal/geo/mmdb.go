package geo

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"resume/internal/metrics"
)

var ErrInvalidAddr = errors.New("无效的网络地址")

// MMDBClient 基于本地 MaxMind City 数据库的离线定位
type MMDBClient struct {
	db *geoip2.Reader
}

// OpenMMDB 打开 City 数据库文件
func OpenMMDB(path string) (*MMDBClient, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 MMDB 失败: %w", err)
	}
	return NewMMDBClient(db)
}

// NewMMDBClient 包装已打开的数据库
func NewMMDBClient(db *geoip2.Reader) (*MMDBClient, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &MMDBClient{db: db}, nil
}

// Lookup 查询地址对应的位置，未收录的地址返回空位置
func (c *MMDBClient) Lookup(_ context.Context, addr string) (Location, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		metrics.GeoLookups.WithLabelValues("mmdb", "error").Inc()
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidAddr, addr)
	}

	rec, err := c.db.City(ip)
	if err != nil {
		metrics.GeoLookups.WithLabelValues("mmdb", "error").Inc()
		return Location{}, fmt.Errorf("MMDB 查询失败: %w", err)
	}
	metrics.GeoLookups.WithLabelValues("mmdb", "ok").Inc()

	loc := Location{
		CountryName: rec.Country.Names["en"],
		City:        rec.City.Names["en"],
		Postal:      rec.Postal.Code,
		Longitude:   rec.Location.Longitude,
		Latitude:    rec.Location.Latitude,
	}
	if len(rec.Subdivisions) > 0 {
		loc.State = rec.Subdivisions[0].Names["en"]
	}
	return loc, nil
}

// Close 关闭数据库
func (c *MMDBClient) Close() error {
	return c.db.Close()
}
