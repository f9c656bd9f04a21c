package basket

import (
	"context"

	"github.com/xiebiao/libshop/internal/domain/basket"
	"github.com/xiebiao/libshop/internal/domain/book"
	"github.com/xiebiao/libshop/pkg/metrics"
)

// TxRunner 事务执行接口
// mysql.TxManager实现此接口,用例层不直接依赖具体事务实现,便于测试
type TxRunner interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ChangeQuantityUseCase 增减购物车数量用例
// 核心语义:在当前数量上加delta
// - 条目不存在且delta>=1: 新建条目
// - 结果>=1: 更新数量
// - 减到1以下: 拒绝(防止通过减量悄悄删除条目,删除走RemoveItem)
type ChangeQuantityUseCase struct {
	basketRepo basket.Repository
	bookRepo   book.Repository
	txManager  TxRunner
}

// NewChangeQuantityUseCase 创建增减数量用例
func NewChangeQuantityUseCase(
	basketRepo basket.Repository,
	bookRepo book.Repository,
	txManager TxRunner,
) *ChangeQuantityUseCase {
	return &ChangeQuantityUseCase{
		basketRepo: basketRepo,
		bookRepo:   bookRepo,
		txManager:  txManager,
	}
}

// ChangeQuantityRequest 增减数量请求DTO
type ChangeQuantityRequest struct {
	UserID uint // 从JWT中提取
	BookID uint
	Delta  int // 增量,正数加负数减,不能为0
}

// ChangeQuantityResponse 增减数量响应DTO
type ChangeQuantityResponse struct {
	BookID   uint `json:"book_id"`
	Quantity int  `json:"quantity"` // 调整后数量
	Removed  bool `json:"removed"`  // 恒为false,与设置数量的响应保持同构
}

// Execute 执行增减数量
//
// 并发问题:先读数量再写回的朴素实现,两个并发请求会读到同一旧值,
// 后提交的覆盖先提交的,+1和+1只生效一次。
// 解决:整个读改写在一个事务内,读时用SELECT FOR UPDATE锁行,
// 并发请求在行锁上排队,逐个生效。
func (uc *ChangeQuantityUseCase) Execute(ctx context.Context, req ChangeQuantityRequest) (*ChangeQuantityResponse, error) {
	if req.Delta == 0 {
		return nil, basket.ErrInvalidDelta
	}

	var resp *ChangeQuantityResponse
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定现有条目(不存在时不加锁,靠唯一索引防并发插入)
		current := 0
		item, err := uc.basketRepo.FindItemForUpdate(txCtx, req.UserID, req.BookID)
		if err != nil && err != basket.ErrItemNotFound {
			return err
		}
		if item != nil {
			current = item.Quantity
		}

		// 2. 减到1以下拒绝,删除条目走RemoveItem
		desired := current + req.Delta
		if desired < basket.MinQuantity {
			return basket.ErrQuantityBelowMinimum
		}

		// 3. 加量时图书必须存在且库存够本次增量
		// 库存读取是预检,权威的检查在确认购买的条件扣减里
		if req.Delta > 0 {
			b, err := uc.bookRepo.FindByID(txCtx, req.BookID)
			if err != nil {
				return err
			}
			if !b.HasStock(req.Delta) {
				return book.ErrInsufficientStock
			}
		}

		// 4. 原子应用增量(不存在则插入,存在则累加)
		if err := uc.basketRepo.AddOrUpdateQuantity(txCtx, req.UserID, req.BookID, req.Delta); err != nil {
			return err
		}

		resp = &ChangeQuantityResponse{BookID: req.BookID, Quantity: desired}
		return nil
	})

	if err != nil {
		metrics.IncCounterVec(metrics.BasketMutationsTotal,
			map[string]string{"op": "change", "result": "error"})
		return nil, err
	}

	metrics.IncCounterVec(metrics.BasketMutationsTotal,
		map[string]string{"op": "change", "result": "ok"})
	return resp, nil
}
