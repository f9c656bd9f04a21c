package purchase

import (
	"time"
)

// Record 购买记录实体
// DDD设计说明:
// 1. 购买记录是只追加的流水(append-only),写入后不再修改
// 2. UnitPrice冗余成交时的单价(分),图书后续调价不影响历史记录
// 3. 一次确认购买会逐条生成记录,同一批记录共享PurchasedAt
type Record struct {
	ID          uint
	UserID      uint      // 购买用户
	BookID      uint      // 购买图书
	Quantity    int       // 购买数量
	UnitPrice   int64     // 成交单价(单位:分)
	PurchasedAt time.Time // 成交时间
	CreatedAt   time.Time
}

// NewRecord 创建购买记录(工厂方法)
func NewRecord(userID, bookID uint, quantity int, unitPrice int64, purchasedAt time.Time) *Record {
	return &Record{
		UserID:      userID,
		BookID:      bookID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		PurchasedAt: purchasedAt,
		CreatedAt:   time.Now(),
	}
}

// TotalPrice 该条记录的总价(分)
func (r *Record) TotalPrice() int64 {
	return r.UnitPrice * int64(r.Quantity)
}
