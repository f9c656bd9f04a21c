package basket

import (
	"context"
	"errors"
	"testing"

	"github.com/xiebiao/libshop/internal/domain/basket"
	"github.com/xiebiao/libshop/internal/domain/book"
	apperrors "github.com/xiebiao/libshop/pkg/errors"
)

func confirmFixture(books ...*book.Book) (*ConfirmAllUseCase, *fakeBasketRepo, *fakeBookRepo, *fakePurchaseRepo, *fakePublisher) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(books...)
	purchaseRepo := &fakePurchaseRepo{}
	publisher := &fakePublisher{}
	uc := NewConfirmAllUseCase(basketRepo, bookRepo, purchaseRepo, fakeTxRunner{}, publisher)
	return uc, basketRepo, bookRepo, purchaseRepo, publisher
}

func addItem(t *testing.T, repo *fakeBasketRepo, userID, bookID uint, quantity int) {
	t.Helper()
	item, err := basket.NewItem(userID, bookID, quantity)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatal(err)
	}
}

// TestConfirmAll_Success 正常确认:扣库存、写流水、清空购物车、发事件
func TestConfirmAll_Success(t *testing.T) {
	uc, basketRepo, bookRepo, purchaseRepo, publisher := confirmFixture(
		&book.Book{ID: 1, Title: "Go程序设计语言", Price: 7900, Stock: 10},
		&book.Book{ID: 2, Title: "数据密集型应用系统设计", Price: 12800, Stock: 3},
	)
	addItem(t, basketRepo, 1, 1, 2)
	addItem(t, basketRepo, 1, 2, 3)

	resp, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}

	// 响应明细与总价
	if len(resp.Items) != 2 {
		t.Fatalf("期望2条明细，实际%d", len(resp.Items))
	}
	wantTotal := int64(7900*2 + 12800*3)
	if resp.Total != wantTotal {
		t.Errorf("期望总价%d，实际%d", wantTotal, resp.Total)
	}

	// 库存扣减
	if got := bookRepo.stock(1); got != 8 {
		t.Errorf("图书1期望库存8，实际%d", got)
	}
	if got := bookRepo.stock(2); got != 0 {
		t.Errorf("图书2期望库存0，实际%d", got)
	}

	// 购买流水
	records, _, _ := purchaseRepo.ListByUserID(context.Background(), 1, 1, 10)
	if len(records) != 2 {
		t.Fatalf("期望2条购买记录，实际%d", len(records))
	}
	for _, r := range records {
		if r.UnitPrice == 0 {
			t.Error("购买记录缺少成交价")
		}
	}

	// 购物车清空
	if basketRepo.count(1) != 0 {
		t.Errorf("期望购物车清空，实际剩%d条", basketRepo.count(1))
	}

	// 事件发布
	if len(publisher.events) != 1 {
		t.Fatalf("期望发布1个事件，实际%d", len(publisher.events))
	}
	if publisher.events[0].Total != wantTotal || len(publisher.events[0].Items) != 2 {
		t.Errorf("事件内容不完整: %+v", publisher.events[0])
	}
}

// TestConfirmAll_EmptyBasket 空购物车空真成功:不扣库存、不写流水、不发事件
func TestConfirmAll_EmptyBasket(t *testing.T) {
	uc, _, bookRepo, purchaseRepo, publisher := confirmFixture(
		&book.Book{ID: 1, Title: "x", Price: 100, Stock: 1},
	)

	resp, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("空购物车确认应成功: %v", err)
	}
	if len(resp.Items) != 0 || resp.Total != 0 || resp.TotalYuan != "0.00" {
		t.Errorf("期望空结果，实际%+v", resp)
	}
	if bookRepo.stock(1) != 1 {
		t.Errorf("库存不应变化: %d", bookRepo.stock(1))
	}
	if records, _, _ := purchaseRepo.ListByUserID(context.Background(), 1, 1, 10); len(records) != 0 {
		t.Errorf("不应产生购买记录，实际%d条", len(records))
	}
	if len(publisher.events) != 0 {
		t.Error("不应发布事件")
	}
}

// TestConfirmAll_InsufficientStock 任一本库存不足,整体失败且状态不变
func TestConfirmAll_InsufficientStock(t *testing.T) {
	uc, basketRepo, bookRepo, purchaseRepo, publisher := confirmFixture(
		&book.Book{ID: 1, Title: "A", Price: 1000, Stock: 10},
		&book.Book{ID: 2, Title: "B", Price: 2000, Stock: 1},
	)
	addItem(t, basketRepo, 1, 1, 2)
	addItem(t, basketRepo, 1, 2, 5) // 库存只有1

	_, err := uc.Execute(context.Background(), 1)
	if err == nil {
		t.Fatal("期望失败，实际成功")
	}
	appErr := apperrors.GetAppError(err)
	if appErr.Code != apperrors.ErrCodeInsufficientStock {
		t.Errorf("期望库存不足错误码%d，实际%d", apperrors.ErrCodeInsufficientStock, appErr.Code)
	}

	// 校验先于任何写入,失败后全部原样
	if bookRepo.stock(1) != 10 || bookRepo.stock(2) != 1 {
		t.Errorf("失败后库存不应变化: %d, %d", bookRepo.stock(1), bookRepo.stock(2))
	}
	if basketRepo.count(1) != 2 {
		t.Errorf("失败后购物车不应变化，实际%d条", basketRepo.count(1))
	}
	if records, _, _ := purchaseRepo.ListByUserID(context.Background(), 1, 1, 10); len(records) != 0 {
		t.Errorf("失败后不应有购买记录，实际%d条", len(records))
	}
	if len(publisher.events) != 0 {
		t.Error("失败后不应发布事件")
	}
}

// TestConfirmAll_BookRemoved 条目引用的图书已下架,整体失败
func TestConfirmAll_BookRemoved(t *testing.T) {
	uc, basketRepo, bookRepo, _, _ := confirmFixture(
		&book.Book{ID: 1, Title: "A", Price: 1000, Stock: 10},
	)
	addItem(t, basketRepo, 1, 1, 1)
	addItem(t, basketRepo, 1, 99, 1) // 不存在的图书

	_, err := uc.Execute(context.Background(), 1)
	if !errors.Is(err, book.ErrBookNotFound) {
		t.Errorf("期望ErrBookNotFound，实际%v", err)
	}
	if bookRepo.stock(1) != 10 {
		t.Errorf("失败后库存不应变化: %d", bookRepo.stock(1))
	}
	if basketRepo.count(1) != 2 {
		t.Errorf("失败后购物车不应变化，实际%d条", basketRepo.count(1))
	}
}

// TestConfirmAll_PublishFailureDoesNotFail 事件发布失败不影响购买结果
func TestConfirmAll_PublishFailureDoesNotFail(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(&book.Book{ID: 1, Title: "A", Price: 1000, Stock: 10})
	purchaseRepo := &fakePurchaseRepo{}
	publisher := &fakePublisher{err: errors.New("broker down")}
	uc := NewConfirmAllUseCase(basketRepo, bookRepo, purchaseRepo, fakeTxRunner{}, publisher)

	addItem(t, basketRepo, 1, 1, 1)

	resp, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("发布失败不应让确认失败: %v", err)
	}
	if resp.Total != 1000 {
		t.Errorf("期望总价1000，实际%d", resp.Total)
	}
	if bookRepo.stock(1) != 9 {
		t.Errorf("期望库存9，实际%d", bookRepo.stock(1))
	}
}

// TestConfirmAll_NilPublisher 未配置消息队列时publisher为nil
func TestConfirmAll_NilPublisher(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(&book.Book{ID: 1, Title: "A", Price: 1000, Stock: 10})
	uc := NewConfirmAllUseCase(basketRepo, bookRepo, &fakePurchaseRepo{}, fakeTxRunner{}, nil)

	addItem(t, basketRepo, 1, 1, 1)

	if _, err := uc.Execute(context.Background(), 1); err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}
}
