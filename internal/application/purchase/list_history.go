package purchase

import (
	"context"
	"fmt"

	"github.com/xiebiao/libshop/internal/domain/book"
	"github.com/xiebiao/libshop/internal/domain/purchase"
)

// ListHistoryUseCase 查询购买历史用例
type ListHistoryUseCase struct {
	purchaseRepo purchase.Repository
	bookRepo     book.Repository
}

// NewListHistoryUseCase 创建查询购买历史用例
func NewListHistoryUseCase(purchaseRepo purchase.Repository, bookRepo book.Repository) *ListHistoryUseCase {
	return &ListHistoryUseCase{
		purchaseRepo: purchaseRepo,
		bookRepo:     bookRepo,
	}
}

// HistoryItem 购买历史展示行
type HistoryItem struct {
	BookID      uint   `json:"book_id"`
	Title       string `json:"title"` // 图书已删除时为空
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"` // 成交单价(分)
	Total       int64  `json:"total"`      // 行总价(分)
	TotalYuan   string `json:"total_yuan"`
	PurchasedAt string `json:"purchased_at"`
}

// Execute 执行查询购买历史(按成交时间倒序分页)
// 书名按记录逐条回查;图书被下架后历史记录仍然完整,
// 因为数量和成交价都冗余在流水里
func (uc *ListHistoryUseCase) Execute(ctx context.Context, userID uint, page, pageSize int) ([]HistoryItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	records, total, err := uc.purchaseRepo.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	// 同一页内书名缓存,避免重复回查
	titles := make(map[uint]string)
	items := make([]HistoryItem, len(records))
	for i, record := range records {
		title, ok := titles[record.BookID]
		if !ok {
			if b, err := uc.bookRepo.FindByID(ctx, record.BookID); err == nil {
				title = b.Title
			}
			titles[record.BookID] = title
		}

		lineTotal := record.TotalPrice()
		items[i] = HistoryItem{
			BookID:      record.BookID,
			Title:       title,
			Quantity:    record.Quantity,
			UnitPrice:   record.UnitPrice,
			Total:       lineTotal,
			TotalYuan:   fmt.Sprintf("%.2f", float64(lineTotal)/100.0),
			PurchasedAt: record.PurchasedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return items, total, nil
}
