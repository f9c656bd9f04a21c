package basket

import (
	"context"
)

// Repository 购物车仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. (user_id, book_id)在存储层有唯一索引,并发插入由数据库兜底
// 3. 增减数量的读改写必须在事务内配合FindItemForUpdate使用,
//    否则两个并发请求会互相覆盖对方的修改
type Repository interface {
	// FindByUserID 查询用户的全部购物车条目
	// 按创建时间升序返回,保证购物车展示顺序稳定
	FindByUserID(ctx context.Context, userID uint) ([]*Item, error)

	// FindItem 按(用户,图书)查询单个条目
	// 不存在时返回ErrItemNotFound
	FindItem(ctx context.Context, userID, bookID uint) (*Item, error)

	// FindItemForUpdate 悲观锁查询单个条目(SELECT FOR UPDATE)
	// 必须在事务内调用,锁定该行直到事务结束
	// 不存在时返回ErrItemNotFound(此时不加锁,由唯一索引防止并发插入)
	FindItemForUpdate(ctx context.Context, userID, bookID uint) (*Item, error)

	// Create 插入新条目
	// (user_id, book_id)冲突时返回数据库错误,调用方在事务内重试或报错
	Create(ctx context.Context, item *Item) error

	// AddOrUpdateQuantity 原子增减数量(单次调用内全有或全无)
	// - 条目存在:quantity = quantity + delta,结果<=0时同一事务内删除该行
	// - 条目不存在:插入新行,quantity = delta
	// 业务侧的下限校验(数量不低于1)由调用方在事务内先行完成
	AddOrUpdateQuantity(ctx context.Context, userID, bookID uint, delta int) error

	// UpdateQuantity 更新条目数量
	// 条目不存在时返回ErrItemNotFound
	UpdateQuantity(ctx context.Context, userID, bookID uint, quantity int) error

	// DeleteItem 删除单个条目
	// 条目不存在时静默成功(删除天然幂等),返回是否真的删掉了一行
	DeleteItem(ctx context.Context, userID, bookID uint) (bool, error)

	// DeleteAllByUserID 清空用户购物车,返回删除的行数
	DeleteAllByUserID(ctx context.Context, userID uint) (int64, error)
}
