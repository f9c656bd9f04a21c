package basket

import (
	"time"
)

// MinQuantity 购物车条目的最小数量
// 数量低于1的条目没有意义,应当直接删除而不是保留0
const MinQuantity = 1

// Item 购物车条目实体
// DDD设计说明:
// 1. 购物车以(UserID, BookID)为业务唯一键,同一本书只有一条记录
// 2. Quantity必须>=MinQuantity,降到0及以下时条目整体删除
// 3. 价格不在购物车中冗余,确认购买时以图书当前价格为准
type Item struct {
	ID        uint
	UserID    uint // 归属用户
	BookID    uint // 关联图书
	Quantity  int  // 数量(>=1)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem 创建购物车条目(工厂方法)
// 业务规则:初始数量必须>=MinQuantity
func NewItem(userID, bookID uint, quantity int) (*Item, error) {
	if quantity < MinQuantity {
		return nil, ErrQuantityBelowMinimum
	}
	now := time.Now()
	return &Item{
		UserID:    userID,
		BookID:    bookID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyDelta 在当前数量上增减(领域行为)
// 返回调整后的数量。调用方根据返回值决定更新还是删除:
// 结果>=MinQuantity时更新,否则整条删除。
func (i *Item) ApplyDelta(delta int) int {
	i.Quantity += delta
	i.UpdatedAt = time.Now()
	return i.Quantity
}

// SetQuantity 直接设置数量(领域行为)
// 业务规则:数量必须>=MinQuantity,置0应当走删除而不是设置
func (i *Item) SetQuantity(quantity int) error {
	if quantity < MinQuantity {
		return ErrQuantityBelowMinimum
	}
	i.Quantity = quantity
	i.UpdatedAt = time.Now()
	return nil
}
