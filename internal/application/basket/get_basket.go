package basket

import (
	"context"
	"fmt"

	"github.com/xiebiao/libshop/internal/domain/basket"
	"github.com/xiebiao/libshop/internal/domain/book"
)

// GetBasketUseCase 查询购物车用例
// 条目关联图书当前信息(书名、在售价、库存),购物车本身不存价格
type GetBasketUseCase struct {
	basketRepo basket.Repository
	bookRepo   book.Repository
}

// NewGetBasketUseCase 创建查询购物车用例
func NewGetBasketUseCase(basketRepo basket.Repository, bookRepo book.Repository) *GetBasketUseCase {
	return &GetBasketUseCase{
		basketRepo: basketRepo,
		bookRepo:   bookRepo,
	}
}

// BasketLine 购物车展示行
type BasketLine struct {
	BookID      uint   `json:"book_id"`
	Title       string `json:"title"`
	UnitPrice   int64  `json:"unit_price"` // 当前单价(分)
	Quantity    int    `json:"quantity"`
	LineTotal   int64  `json:"line_total"` // 行小计(分)
	Stock       int    `json:"stock"`
	StockEnough bool   `json:"stock_enough"` // 库存是否够当前数量
	BookRemoved bool   `json:"book_removed"` // 图书已下架(确认购买会失败)
}

// GetBasketResponse 查询购物车响应DTO
type GetBasketResponse struct {
	Lines     []BasketLine `json:"lines"`
	Total     int64        `json:"total"` // 总金额(分)
	TotalYuan string       `json:"total_yuan"`
}

// Execute 执行查询购物车
// 图书被下架的条目仍然返回(BookRemoved=true),由前端提示用户移除,
// 不在查询路径上悄悄改写购物车
func (uc *GetBasketUseCase) Execute(ctx context.Context, userID uint) (*GetBasketResponse, error) {
	items, err := uc.basketRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]BasketLine, 0, len(items))
	var total int64
	for _, item := range items {
		b, err := uc.bookRepo.FindByID(ctx, item.BookID)
		if err != nil {
			if err == book.ErrBookNotFound {
				lines = append(lines, BasketLine{
					BookID:      item.BookID,
					Quantity:    item.Quantity,
					BookRemoved: true,
				})
				continue
			}
			return nil, err
		}

		lineTotal := b.Price * int64(item.Quantity)
		total += lineTotal
		lines = append(lines, BasketLine{
			BookID:      item.BookID,
			Title:       b.Title,
			UnitPrice:   b.Price,
			Quantity:    item.Quantity,
			LineTotal:   lineTotal,
			Stock:       b.Stock,
			StockEnough: b.HasStock(item.Quantity),
		})
	}

	return &GetBasketResponse{
		Lines:     lines,
		Total:     total,
		TotalYuan: fmt.Sprintf("%.2f", float64(total)/100.0),
	}, nil
}
