package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"resume/internal/metrics"
	"resume/internal/visitor"
)

// DefaultWindowDays 每日曲线至少覆盖的天数
const DefaultWindowDays = 30

// Reader 访客表的读取端
type Reader interface {
	All(ctx context.Context) ([]visitor.Record, error)
}

// Reporter 访客统计报告生成器
type Reporter struct {
	log        *slog.Logger
	reader     Reader
	clock      clockwork.Clock
	loc        *time.Location
	windowDays int
}

// NewReporter 创建报告生成器，reader 为 nil 时所有报告为空数据集
func NewReporter(log *slog.Logger, reader Reader, clock clockwork.Clock, loc *time.Location, windowDays int) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Reporter{
		log:        log,
		reader:     reader,
		clock:      clock,
		loc:        loc,
		windowDays: windowDays,
	}
}

// Records 全表扫描；访客库为空或不可用时返回空数据集
func (r *Reporter) Records(ctx context.Context) []visitor.Record {
	if r.reader == nil {
		return nil
	}
	records, err := r.reader.All(ctx)
	if err != nil {
		metrics.ReportErrors.Inc()
		r.log.Error("读取访客数据失败，使用空数据集", "error", err)
		return nil
	}
	return records
}

// Report 生成每日曲线、地图点、表格与汇总，只扫描一次
func (r *Reporter) Report(ctx context.Context) Report {
	return r.Build(r.Records(ctx))
}

// Build 由已读取的记录生成报告
func (r *Reporter) Build(records []visitor.Record) Report {
	return Report{
		Summary: Summarize(records),
		Daily:   DailySeries(records, r.Today(), r.windowDays),
		Markers: Markers(records),
		Rows:    Rows(records),
	}
}

// Today 参考时区下的当前时刻
func (r *Reporter) Today() time.Time {
	return r.clock.Now().In(r.loc)
}
