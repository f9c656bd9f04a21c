package purchase

import (
	"context"
)

// Repository 购买记录仓储接口(依赖倒置原则)
// 记录只追加不修改,所以接口上没有Update/Delete
type Repository interface {
	// Create 追加一条购买记录
	Create(ctx context.Context, record *Record) error

	// CreateBatch 批量追加购买记录(一次确认购买产生的整批)
	// 必须在事务内调用,保证整批原子写入
	CreateBatch(ctx context.Context, records []*Record) error

	// ListByUserID 分页查询用户的购买历史
	// 按成交时间倒序返回(最近的在前)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Record, int64, error)
}
