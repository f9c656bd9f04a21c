package basket

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/xiebiao/libshop/internal/domain/basket"
	"github.com/xiebiao/libshop/internal/domain/book"
	"github.com/xiebiao/libshop/internal/domain/purchase"
	apperrors "github.com/xiebiao/libshop/pkg/errors"
	"github.com/xiebiao/libshop/pkg/metrics"
)

// ConfirmAllUseCase 确认购买整个购物车用例
// 这是整个系统最核心的用例
// 涉及:事务处理、并发控制、库存扣减、购买流水、事件发布
type ConfirmAllUseCase struct {
	basketRepo   basket.Repository
	bookRepo     book.Repository
	purchaseRepo purchase.Repository
	txManager    TxRunner
	publisher    EventPublisher // 可为nil(未配置消息队列时)
}

// NewConfirmAllUseCase 创建确认购买用例
func NewConfirmAllUseCase(
	basketRepo basket.Repository,
	bookRepo book.Repository,
	purchaseRepo purchase.Repository,
	txManager TxRunner,
	publisher EventPublisher,
) *ConfirmAllUseCase {
	return &ConfirmAllUseCase{
		basketRepo:   basketRepo,
		bookRepo:     bookRepo,
		purchaseRepo: purchaseRepo,
		txManager:    txManager,
		publisher:    publisher,
	}
}

// ConfirmedItem 确认结果中的单条明细
type ConfirmedItem struct {
	BookID    uint   `json:"book_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"` // 成交单价(分)
	LineTotal int64  `json:"line_total"` // 行小计(分)
}

// ConfirmAllResponse 确认购买响应DTO
type ConfirmAllResponse struct {
	Items       []ConfirmedItem `json:"items"`
	Total       int64           `json:"total"` // 总金额(分)
	TotalYuan   string          `json:"total_yuan"`
	ConfirmedAt string          `json:"confirmed_at"`
}

// Execute 执行确认购买
//
// 核心问题一:超卖
// 库存10本,100人同时确认,朴素的查库存-判断-扣减会让所有人都通过判断。
// 解决:事务内SELECT FOR UPDATE逐本锁定,锁定后校验库存,再原子扣减。
//
// 核心问题二:部分成功
// 先校验全部再逐条落库的两段式,在第二段中途失败会留下
// "一半书扣了库存、一半没扣"的状态。
// 解决:锁定、校验、扣减、写流水、清空购物车全部在一个数据库事务里,
// 任何一条失败整体回滚,购物车和库存都回到确认前的样子。
//
// 按book_id升序锁定,保证并发确认时加锁顺序一致,避免死锁。
// (FindByUserID按创建时间返回,两个用户以不同顺序加入同两本书时,
// 若按购物车顺序加锁就可能互相等待)
func (uc *ConfirmAllUseCase) Execute(ctx context.Context, userID uint) (*ConfirmAllResponse, error) {
	start := time.Now()

	var resp *ConfirmAllResponse
	var event PurchaseConfirmedEvent
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 读出购物车
		items, err := uc.basketRepo.FindByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		// 空购物车:空真,直接成功,不产生流水也不发事件
		if len(items) == 0 {
			resp = &ConfirmAllResponse{
				Items:       []ConfirmedItem{},
				Total:       0,
				TotalYuan:   "0.00",
				ConfirmedAt: time.Now().Format("2006-01-02 15:04:05"),
			}
			return nil
		}

		// 2. 按book_id升序逐本锁定并校验库存
		sortByBookID(items)
		confirmedAt := time.Now()
		confirmed := make([]ConfirmedItem, 0, len(items))
		records := make([]*purchase.Record, 0, len(items))
		eventRows := make([]PurchaseConfirmedRow, 0, len(items))
		var total int64
		for _, item := range items {
			b, err := uc.bookRepo.LockByID(txCtx, item.BookID)
			if err != nil {
				return err
			}
			if !b.HasStock(item.Quantity) {
				return insufficientStockError(b, item.Quantity)
			}

			// 成交价取锁定时的数据库价格,购物车里没有价格可被篡改
			lineTotal := b.Price * int64(item.Quantity)
			total += lineTotal
			confirmed = append(confirmed, ConfirmedItem{
				BookID:    b.ID,
				Title:     b.Title,
				Quantity:  item.Quantity,
				UnitPrice: b.Price,
				LineTotal: lineTotal,
			})
			records = append(records, purchase.NewRecord(userID, b.ID, item.Quantity, b.Price, confirmedAt))
			eventRows = append(eventRows, PurchaseConfirmedRow{
				BookID:    b.ID,
				Quantity:  item.Quantity,
				UnitPrice: b.Price,
			})
		}

		// 3. 扣减库存(行已锁定,扣减不会再失败于并发,只会失败于上面漏查)
		for _, item := range items {
			if err := uc.bookRepo.UpdateStock(txCtx, item.BookID, -item.Quantity); err != nil {
				return err
			}
		}

		// 4. 写购买流水(整批一个INSERT)
		if err := uc.purchaseRepo.CreateBatch(txCtx, records); err != nil {
			return err
		}

		// 5. 清空购物车(事务自动COMMIT)
		if _, err := uc.basketRepo.DeleteAllByUserID(txCtx, userID); err != nil {
			return err
		}

		resp = &ConfirmAllResponse{
			Items:       confirmed,
			Total:       total,
			TotalYuan:   fmt.Sprintf("%.2f", float64(total)/100.0),
			ConfirmedAt: confirmedAt.Format("2006-01-02 15:04:05"),
		}
		event = PurchaseConfirmedEvent{
			UserID:      userID,
			Items:       eventRows,
			Total:       total,
			ConfirmedAt: confirmedAt,
		}
		return nil
	})

	if err != nil {
		metrics.IncCounterVec(metrics.PurchasesFailedTotal,
			map[string]string{"reason": failureReason(err)})
		return nil, err
	}

	// 空确认不计入购买指标,也不发事件
	if len(resp.Items) == 0 {
		return resp, nil
	}

	metrics.IncCounter(metrics.PurchasesConfirmedTotal)
	metrics.ObserveHistogram(metrics.PurchaseConfirmDuration, time.Since(start).Seconds())

	// 事件发布在事务之外,发布失败不影响已提交的购买
	// (熔断与重试在publisher内部处理,这里只记日志)
	if uc.publisher != nil {
		if err := uc.publisher.PublishPurchaseConfirmed(ctx, event); err != nil {
			log.Printf("发布购买确认事件失败 user_id=%d: %v", userID, err)
		}
	}

	return resp, nil
}

// sortByBookID 按BookID升序排序(统一加锁顺序)
func sortByBookID(items []*basket.Item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].BookID < items[j].BookID
	})
}

// insufficientStockError 带书名与数量信息的库存不足错误
func insufficientStockError(b *book.Book, want int) error {
	return apperrors.New(apperrors.ErrCodeInsufficientStock,
		fmt.Sprintf("图书《%s》库存不足,当前库存:%d,需要:%d", b.Title, b.Stock, want))
}

// failureReason 错误 → 失败原因标签
func failureReason(err error) string {
	appErr := apperrors.GetAppError(err)
	switch appErr.Code {
	case apperrors.ErrCodeBookNotFound:
		return "book_not_found"
	case apperrors.ErrCodeInsufficientStock:
		return "insufficient_stock"
	default:
		return "persistence"
	}
}
