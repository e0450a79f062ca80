package visitor

import (
	"context"
	"log/slog"

	"resume/internal/geo"
	"resume/internal/metrics"
)

// Recorder 将访问写入访客表，所有存储错误在此处记录日志后吞掉
type Recorder struct {
	log   *slog.Logger
	store Store
}

// NewRecorder 创建记录器
func NewRecorder(log *slog.Logger, store Store) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{log: log, store: store}
}

// Record 记录一次访问：新键插入位置快照，已有键只增加计数
func (r *Recorder) Record(ctx context.Context, key string, loc geo.Location) {
	visits, err := r.store.Upsert(ctx, NewRecord(key, loc))
	if err != nil {
		metrics.VisitsRecorded.WithLabelValues("error").Inc()
		r.log.Error("记录访问失败", "key", key, "error", err)
		return
	}

	if visits == 1 {
		metrics.VisitsRecorded.WithLabelValues("inserted").Inc()
	} else {
		metrics.VisitsRecorded.WithLabelValues("incremented").Inc()
	}
	r.log.Debug("访问已记录", "key", key, "visits", visits)
}
