package basket

import (
	"context"
	"sync"

	"github.com/xiebiao/libshop/internal/domain/basket"
	"github.com/xiebiao/libshop/internal/domain/book"
	"github.com/xiebiao/libshop/internal/domain/purchase"
)

// 手写的内存版仓储,只实现测试需要的行为
// 没有真实事务:fakeTxRunner直接执行fn,用例的校验先于写入,
// 失败路径在任何写入发生前返回,所以断言"状态未变"依然成立

type itemKey struct {
	userID uint
	bookID uint
}

type fakeBasketRepo struct {
	mu    sync.Mutex
	items map[itemKey]*basket.Item
	seq   uint
}

func newFakeBasketRepo() *fakeBasketRepo {
	return &fakeBasketRepo{items: make(map[itemKey]*basket.Item)}
}

func (f *fakeBasketRepo) FindByUserID(_ context.Context, userID uint) ([]*basket.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*basket.Item
	for k, v := range f.items {
		if k.userID == userID {
			copied := *v
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBasketRepo) FindItem(_ context.Context, userID, bookID uint) (*basket.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.items[itemKey{userID, bookID}]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, basket.ErrItemNotFound
}

func (f *fakeBasketRepo) FindItemForUpdate(ctx context.Context, userID, bookID uint) (*basket.Item, error) {
	return f.FindItem(ctx, userID, bookID)
}

func (f *fakeBasketRepo) Create(_ context.Context, item *basket.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	item.ID = f.seq
	copied := *item
	f.items[itemKey{item.UserID, item.BookID}] = &copied
	return nil
}

func (f *fakeBasketRepo) AddOrUpdateQuantity(_ context.Context, userID, bookID uint, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := itemKey{userID, bookID}
	if v, ok := f.items[key]; ok {
		v.Quantity += delta
		if v.Quantity <= 0 {
			delete(f.items, key)
		}
		return nil
	}
	f.seq++
	f.items[key] = &basket.Item{ID: f.seq, UserID: userID, BookID: bookID, Quantity: delta}
	return nil
}

func (f *fakeBasketRepo) UpdateQuantity(_ context.Context, userID, bookID uint, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[itemKey{userID, bookID}]
	if !ok {
		return basket.ErrItemNotFound
	}
	v.Quantity = quantity
	return nil
}

func (f *fakeBasketRepo) DeleteItem(_ context.Context, userID, bookID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := itemKey{userID, bookID}
	_, existed := f.items[key]
	delete(f.items, key)
	return existed, nil
}

func (f *fakeBasketRepo) DeleteAllByUserID(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.items {
		if k.userID == userID {
			delete(f.items, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeBasketRepo) count(userID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.items {
		if k.userID == userID {
			n++
		}
	}
	return n
}

func (f *fakeBasketRepo) quantity(userID, bookID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.items[itemKey{userID, bookID}]; ok {
		return v.Quantity
	}
	return 0
}

type fakeBookRepo struct {
	mu    sync.Mutex
	books map[uint]*book.Book
}

func newFakeBookRepo(books ...*book.Book) *fakeBookRepo {
	f := &fakeBookRepo{books: make(map[uint]*book.Book)}
	for _, b := range books {
		f.books[b.ID] = b
	}
	return f
}

func (f *fakeBookRepo) FindByID(_ context.Context, id uint) (*book.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.books[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, book.ErrBookNotFound
}

func (f *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeBookRepo) UpdateStock(_ context.Context, id uint, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return book.ErrInsufficientStock
	}
	b.Stock += delta
	return nil
}

func (f *fakeBookRepo) stock(id uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.books[id]; ok {
		return b.Stock
	}
	return -1
}

// 以下接口方法测试用不到,保持接口完整即可

func (f *fakeBookRepo) Create(_ context.Context, b *book.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books[b.ID] = b
	return nil
}

func (f *fakeBookRepo) FindByISBN(_ context.Context, _ string) (*book.Book, error) {
	return nil, book.ErrBookNotFound
}

func (f *fakeBookRepo) List(_ context.Context, _ book.ListParams) ([]*book.Book, int64, error) {
	return nil, 0, nil
}

type fakePurchaseRepo struct {
	mu      sync.Mutex
	records []*purchase.Record
}

func (f *fakePurchaseRepo) Create(_ context.Context, record *purchase.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakePurchaseRepo) CreateBatch(_ context.Context, records []*purchase.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
	return nil
}

func (f *fakePurchaseRepo) ListByUserID(_ context.Context, userID uint, _, _ int) ([]*purchase.Record, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*purchase.Record
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

// fakeTxRunner 直接执行fn,不提供真实的回滚
type fakeTxRunner struct{}

func (fakeTxRunner) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakePublisher 记录发布过的事件
type fakePublisher struct {
	mu     sync.Mutex
	events []PurchaseConfirmedEvent
	err    error // 非nil时发布失败
}

func (f *fakePublisher) PublishPurchaseConfirmed(_ context.Context, event PurchaseConfirmedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}
