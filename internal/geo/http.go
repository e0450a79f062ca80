package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"resume/internal/metrics"
)

const maxBodySize = 64 << 10

// HTTPClient 通过外部 IP 定位服务查询，每次调用一个请求，不缓存不重试
type HTTPClient struct {
	endpoint string
	http     *http.Client
}

// NewHTTPClient 创建 HTTP 定位客户端，endpoint 形如 https://geolocation-db.com/json
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

// Lookup 查询地址对应的位置
func (c *HTTPClient) Lookup(ctx context.Context, addr string) (Location, error) {
	loc, err := c.lookup(ctx, addr)
	if err != nil {
		metrics.GeoLookups.WithLabelValues("http", "error").Inc()
		return Location{}, err
	}
	metrics.GeoLookups.WithLabelValues("http", "ok").Inc()
	return loc, nil
}

func (c *HTTPClient) lookup(ctx context.Context, addr string) (Location, error) {
	reqURL := c.endpoint + "/" + url.PathEscape(addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Location{}, fmt.Errorf("构建定位请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("定位请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Location{}, fmt.Errorf("定位服务返回状态码 %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Location{}, fmt.Errorf("读取定位响应失败: %w", err)
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Location{}, fmt.Errorf("解析定位响应失败: %w", err)
	}
	return p.location(), nil
}
