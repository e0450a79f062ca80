package session

import (
	"time"

	"github.com/jellydator/ttlcache/v3"

	"resume/internal/content"
)

const (
	labelTTL      = 30 * time.Minute
	labelCapacity = 10000
	// 每个会话最多保留的动态标签数
	maxLabels = 8
)

// LabelCache 按会话记录访问过的子页面，用于在主页上显示动态标签
type LabelCache struct {
	cache *ttlcache.Cache[string, []content.Tab]
}

// NewLabelCache 创建缓存并启动过期清理
func NewLabelCache() *LabelCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, []content.Tab](labelTTL),
		ttlcache.WithCapacity[string, []content.Tab](labelCapacity),
	)
	go cache.Start()
	return &LabelCache{cache: cache}
}

// Add 记录一个子页面标签，已存在时移到最前
func (l *LabelCache) Add(sessionID string, tab content.Tab) {
	if sessionID == "" {
		return
	}
	tabs := []content.Tab{tab}
	for _, t := range l.Get(sessionID) {
		if t.Value != tab.Value && len(tabs) < maxLabels {
			tabs = append(tabs, t)
		}
	}
	l.cache.Set(sessionID, tabs, ttlcache.DefaultTTL)
}

// Get 返回会话的动态标签副本
func (l *LabelCache) Get(sessionID string) []content.Tab {
	item := l.cache.Get(sessionID)
	if item == nil {
		return nil
	}
	v := item.Value()
	out := make([]content.Tab, len(v))
	copy(out, v)
	return out
}

// Len 当前缓存的会话数
func (l *LabelCache) Len() int {
	return l.cache.Len()
}

// Close 停止过期清理
func (l *LabelCache) Close() {
	l.cache.Stop()
}
