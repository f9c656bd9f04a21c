package basket

import (
	"context"
	"time"
)

// PurchaseConfirmedEvent 购买确认事件
// 事务提交后对外发布,下游(如通知、报表)据此消费
type PurchaseConfirmedEvent struct {
	UserID      uint                   `json:"user_id"`
	Items       []PurchaseConfirmedRow `json:"items"`
	Total       int64                  `json:"total"` // 总金额(分)
	ConfirmedAt time.Time              `json:"confirmed_at"`
}

// PurchaseConfirmedRow 事件中的单条购买明细
type PurchaseConfirmedRow struct {
	BookID    uint  `json:"book_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"` // 成交单价(分)
}

// EventPublisher 购买事件发布接口
// 由infrastructure/event实现(RabbitMQ+熔断器),用例层只依赖接口
type EventPublisher interface {
	PublishPurchaseConfirmed(ctx context.Context, event PurchaseConfirmedEvent) error
}
