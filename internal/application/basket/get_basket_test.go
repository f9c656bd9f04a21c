package basket

import (
	"context"
	"testing"

	"github.com/xiebiao/libshop/internal/domain/book"
)

// TestGetBasket 购物车按图书当前价展示并汇总
func TestGetBasket(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(
		&book.Book{ID: 1, Title: "A", Price: 1000, Stock: 1},
		&book.Book{ID: 2, Title: "B", Price: 2000, Stock: 10},
	)
	uc := NewGetBasketUseCase(basketRepo, bookRepo)

	addItem(t, basketRepo, 1, 1, 3) // 库存1不够3
	addItem(t, basketRepo, 1, 2, 2)

	resp, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}
	if len(resp.Lines) != 2 {
		t.Fatalf("期望2行，实际%d", len(resp.Lines))
	}
	if resp.Total != 1000*3+2000*2 {
		t.Errorf("总价错误: %d", resp.Total)
	}

	for _, line := range resp.Lines {
		switch line.BookID {
		case 1:
			if line.StockEnough {
				t.Error("图书1库存不足,StockEnough应为false")
			}
		case 2:
			if !line.StockEnough {
				t.Error("图书2库存充足,StockEnough应为true")
			}
		}
	}
}

// TestGetBasket_RemovedBook 图书下架后条目仍返回并打标
func TestGetBasket_RemovedBook(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(&book.Book{ID: 1, Title: "A", Price: 1000, Stock: 5})
	uc := NewGetBasketUseCase(basketRepo, bookRepo)

	addItem(t, basketRepo, 1, 1, 1)
	addItem(t, basketRepo, 1, 99, 2) // 已下架

	resp, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}
	if len(resp.Lines) != 2 {
		t.Fatalf("期望2行，实际%d", len(resp.Lines))
	}
	// 下架条目不计入总价
	if resp.Total != 1000 {
		t.Errorf("期望总价1000，实际%d", resp.Total)
	}

	var removed bool
	for _, line := range resp.Lines {
		if line.BookID == 99 && line.BookRemoved {
			removed = true
		}
	}
	if !removed {
		t.Error("下架图书的条目应带BookRemoved标记")
	}
}
