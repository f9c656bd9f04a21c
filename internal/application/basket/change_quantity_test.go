package basket

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/xiebiao/libshop/internal/domain/basket"
	"github.com/xiebiao/libshop/internal/domain/book"
	"github.com/xiebiao/libshop/pkg/metrics"
)

func init() {
	metrics.InitMetrics()
}

func testBook(id uint, price int64, stock int) *book.Book {
	return &book.Book{ID: id, ISBN: "9787115428028", Title: "测试图书", Price: price, Stock: stock}
}

// TestChangeQuantity_CreateWhenAbsent 条目不存在时新建
func TestChangeQuantity_CreateWhenAbsent(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 10))
	uc := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	resp, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 2})
	if err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}
	if resp.Quantity != 2 {
		t.Errorf("期望数量2，实际%d", resp.Quantity)
	}
	if basketRepo.quantity(1, 1) != 2 {
		t.Errorf("仓储中期望数量2，实际%d", basketRepo.quantity(1, 1))
	}
}

// TestChangeQuantity_AccumulatesDelta 已有条目上累加
func TestChangeQuantity_AccumulatesDelta(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 10))
	uc := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	for _, delta := range []int{2, 3, -1} {
		if _, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: delta}); err != nil {
			t.Fatalf("delta=%d时期望成功: %v", delta, err)
		}
	}

	if got := basketRepo.quantity(1, 1); got != 4 {
		t.Errorf("期望累加后数量4，实际%d", got)
	}
}

// TestChangeQuantity_RejectsDropBelowMinimum 减量不能把数量降到1以下
// 删除条目只能走移除接口,减量减没了按错误处理
func TestChangeQuantity_RejectsDropBelowMinimum(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 10))
	uc := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	if _, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 3}); err != nil {
		t.Fatal(err)
	}

	_, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: -5})
	if !errors.Is(err, basket.ErrQuantityBelowMinimum) {
		t.Fatalf("期望ErrQuantityBelowMinimum，实际%v", err)
	}
	if got := basketRepo.quantity(1, 1); got != 3 {
		t.Errorf("拒绝后数量应保持3，实际%d", got)
	}

	// 降到正好1是允许的
	resp, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: -2})
	if err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}
	if resp.Quantity != 1 || basketRepo.quantity(1, 1) != 1 {
		t.Errorf("期望数量1，实际resp=%d repo=%d", resp.Quantity, basketRepo.quantity(1, 1))
	}
}

// TestChangeQuantity_StockPrecheck 增量超过当前库存时拒绝
func TestChangeQuantity_StockPrecheck(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 3))
	uc := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	_, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 5})
	if !errors.Is(err, book.ErrInsufficientStock) {
		t.Errorf("期望ErrInsufficientStock，实际%v", err)
	}
	if basketRepo.count(1) != 0 {
		t.Error("失败后购物车不应有条目")
	}

	// 减量不做库存校验
	if _, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: -1}); err != nil {
		t.Errorf("减量不应做库存校验: %v", err)
	}
}

// TestChangeQuantity_RejectsNonPositiveInitial 不存在的条目不能以非正增量创建
func TestChangeQuantity_RejectsNonPositiveInitial(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 10))
	uc := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	_, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: -1})
	if !errors.Is(err, basket.ErrQuantityBelowMinimum) {
		t.Errorf("期望ErrQuantityBelowMinimum，实际%v", err)
	}

	// delta=0始终非法
	_, err = uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 0})
	if !errors.Is(err, basket.ErrInvalidDelta) {
		t.Errorf("期望ErrInvalidDelta，实际%v", err)
	}
}

// TestChangeQuantity_BookMustExist 图书不存在时不能加入购物车
func TestChangeQuantity_BookMustExist(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo()
	uc := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	_, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 99, Delta: 1})
	if !errors.Is(err, book.ErrBookNotFound) {
		t.Errorf("期望ErrBookNotFound，实际%v", err)
	}
	if basketRepo.count(1) != 0 {
		t.Error("失败后购物车不应有条目")
	}
}

// TestChangeQuantity_ConcurrentIncrements 并发+1逐个生效
// fake仓储没有行锁,这里验证的是用例串行正确性之外,
// 并发调用不panic且最终数量不超过增量之和
func TestChangeQuantity_ConcurrentIncrements(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 100))
	uc := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	if _, err := uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 1}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 1})
		}()
	}
	wg.Wait()

	if got := basketRepo.quantity(1, 1); got < 1 || got > 21 {
		t.Errorf("数量越界: %d", got)
	}
}

// TestSetQuantity_Overwrite 覆盖已有数量
func TestSetQuantity_Overwrite(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 10))
	change := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})
	set := NewSetQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	if _, err := change.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 2}); err != nil {
		t.Fatal(err)
	}

	resp, err := set.Execute(context.Background(), SetQuantityRequest{UserID: 1, BookID: 1, Quantity: 7})
	if err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}
	if resp.Quantity != 7 || basketRepo.quantity(1, 1) != 7 {
		t.Errorf("期望数量7，实际resp=%d repo=%d", resp.Quantity, basketRepo.quantity(1, 1))
	}
}

// TestSetQuantity_MissingItem 设置不隐式创建
func TestSetQuantity_MissingItem(t *testing.T) {
	bookRepo := newFakeBookRepo(testBook(1, 2500, 10))
	set := NewSetQuantityUseCase(newFakeBasketRepo(), bookRepo, fakeTxRunner{})

	_, err := set.Execute(context.Background(), SetQuantityRequest{UserID: 1, BookID: 1, Quantity: 3})
	if !errors.Is(err, basket.ErrItemNotFound) {
		t.Errorf("期望ErrItemNotFound，实际%v", err)
	}
}

// TestSetQuantity_Validation 图书不存在或库存不够时拒绝
func TestSetQuantity_Validation(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 3))
	change := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})
	set := NewSetQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	if _, err := change.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 2}); err != nil {
		t.Fatal(err)
	}

	if _, err := set.Execute(context.Background(), SetQuantityRequest{UserID: 1, BookID: 99, Quantity: 1}); !errors.Is(err, book.ErrBookNotFound) {
		t.Errorf("期望ErrBookNotFound，实际%v", err)
	}
	if _, err := set.Execute(context.Background(), SetQuantityRequest{UserID: 1, BookID: 1, Quantity: 5}); !errors.Is(err, book.ErrInsufficientStock) {
		t.Errorf("期望ErrInsufficientStock，实际%v", err)
	}
	if got := basketRepo.quantity(1, 1); got != 2 {
		t.Errorf("拒绝后数量应保持2，实际%d", got)
	}
}

// TestSetQuantity_ZeroDeletes 置0删除且幂等
func TestSetQuantity_ZeroDeletes(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 10))
	change := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})
	set := NewSetQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})

	if _, err := change.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: 1, Delta: 2}); err != nil {
		t.Fatal(err)
	}

	// 第一次置0:删除
	resp, err := set.Execute(context.Background(), SetQuantityRequest{UserID: 1, BookID: 1, Quantity: 0})
	if err != nil || !resp.Removed {
		t.Fatalf("期望删除成功: err=%v removed=%v", err, resp != nil && resp.Removed)
	}

	// 第二次置0:条目已不存在,依然成功
	if _, err := set.Execute(context.Background(), SetQuantityRequest{UserID: 1, BookID: 1, Quantity: 0}); err != nil {
		t.Errorf("置0应幂等，实际失败: %v", err)
	}
}

// TestRemoveAndClear 移除与清空均幂等
func TestRemoveAndClear(t *testing.T) {
	basketRepo := newFakeBasketRepo()
	bookRepo := newFakeBookRepo(testBook(1, 2500, 10), testBook(2, 1800, 5))
	change := NewChangeQuantityUseCase(basketRepo, bookRepo, fakeTxRunner{})
	remove := NewRemoveItemUseCase(basketRepo)
	clear := NewClearBasketUseCase(basketRepo)

	for _, id := range []uint{1, 2} {
		if _, err := change.Execute(context.Background(), ChangeQuantityRequest{UserID: 1, BookID: id, Delta: 1}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := remove.Execute(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("移除失败: %v", err)
	}
	if !removed {
		t.Error("移除存在的条目应报告removed=true")
	}
	// 重复移除不报错,但要报告没有行被删
	removed, err = remove.Execute(context.Background(), 1, 1)
	if err != nil {
		t.Errorf("重复移除应成功: %v", err)
	}
	if removed {
		t.Error("重复移除应报告removed=false")
	}

	n, err := clear.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("清空失败: %v", err)
	}
	if n != 1 {
		t.Errorf("期望清空1条，实际%d条", n)
	}
	if basketRepo.count(1) != 0 {
		t.Errorf("期望购物车为空，实际%d条", basketRepo.count(1))
	}
	// 清空空购物车不报错,删除行数为0
	n, err = clear.Execute(context.Background(), 1)
	if err != nil {
		t.Errorf("清空空购物车应成功: %v", err)
	}
	if n != 0 {
		t.Errorf("空购物车清空应报告0条，实际%d", n)
	}
}
