package visitor

import "context"

// Store 访客表的写入端
type Store interface {
	// Upsert 不存在时插入 rec（visits=1），存在时 visits 加 1，返回更新后的访问次数
	Upsert(ctx context.Context, rec Record) (int, error)
}
