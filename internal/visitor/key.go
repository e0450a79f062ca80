package visitor

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// BucketWidth 去重时间桶宽度
	BucketWidth = 5 * time.Minute

	// BucketLayout 时间桶在 ID 中的格式，如 2024/01/01 10:05AM
	BucketLayout = "2006/01/02 03:04PM"

	// DateLayout 时间桶中的日期部分
	DateLayout = "2006/01/02"
)

// KeyGenerator 由地址和当前时间桶生成去重键
type KeyGenerator struct {
	clock clockwork.Clock
	loc   *time.Location
}

// NewKeyGenerator 创建键生成器，loc 为固定参考时区
func NewKeyGenerator(clock clockwork.Clock, loc *time.Location) *KeyGenerator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &KeyGenerator{clock: clock, loc: loc}
}

// Key 返回 "<地址>-<时间桶>"
func (g *KeyGenerator) Key(addr string) string {
	return KeyAt(addr, g.clock.Now(), g.loc)
}

// KeyAt 计算给定时刻的键
func KeyAt(addr string, t time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s-%s", addr, Bucket(t, loc).Format(BucketLayout))
}

// Bucket 将时刻换算到 loc 后，分钟向下取整到 5 的倍数
func Bucket(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()-t.Minute()%5, 0, 0, loc)
}
