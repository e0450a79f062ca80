package visitor

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"resume/internal/geo"
	"resume/internal/metrics"
)

// Tracker 页面加载时的写入路径：定位 → 生成键 → 记录
type Tracker struct {
	log      *slog.Logger
	geo      geo.Client
	keys     *KeyGenerator
	recorder *Recorder
}

// NewTracker 创建访问追踪器
func NewTracker(log *slog.Logger, client geo.Client, keys *KeyGenerator, recorder *Recorder) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{log: log, geo: client, keys: keys, recorder: recorder}
}

// Track 对一次页面加载执行写入路径，定位失败时放弃本次记录
func (t *Tracker) Track(ctx context.Context, addr string) {
	if addr == "" {
		metrics.TrackingSkipped.WithLabelValues("no_addr").Inc()
		t.log.Warn("无法确定来源地址，跳过访问记录")
		return
	}
	loc, err := t.geo.Lookup(ctx, addr)
	if err != nil {
		metrics.TrackingSkipped.WithLabelValues("geo_error").Inc()
		t.log.Warn("定位失败，跳过访问记录", "addr", addr, "error", err)
		return
	}
	t.recorder.Record(ctx, t.keys.Key(addr), loc)
}

// ClientAddr 取请求的来源地址，只接受合法的 IP，返回规范形式
// 优先级：X-Forwarded-For 首跳 → CF-Connecting-IP → X-Real-IP → 连接地址
// 都不合法时返回空串
func ClientAddr(r *http.Request) string {
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	for _, v := range []string{
		first,
		r.Header.Get("CF-Connecting-IP"),
		r.Header.Get("X-Real-IP"),
	} {
		if addr, ok := parseAddr(v); ok {
			return addr
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	addr, _ := parseAddr(host)
	return addr
}

func parseAddr(v string) (string, bool) {
	ip, err := netip.ParseAddr(strings.TrimSpace(v))
	if err != nil {
		return "", false
	}
	return ip.WithZone("").Unmap().String(), true
}
