package basket

import (
	"context"

	"github.com/xiebiao/libshop/internal/domain/basket"
	"github.com/xiebiao/libshop/internal/domain/book"
	"github.com/xiebiao/libshop/pkg/metrics"
)

// SetQuantityUseCase 直接设置购物车数量用例
// 与增减数量的区别:这里是覆盖语义
// - 先校验图书存在,正数数量还校验库存充足
// - quantity>=1且条目存在: 更新为指定数量
// - quantity>=1但条目不存在: 返回ErrItemNotFound(设置不隐式创建)
// - quantity<=0: 删除条目(幂等,不存在也算成功)
type SetQuantityUseCase struct {
	basketRepo basket.Repository
	bookRepo   book.Repository
	txManager  TxRunner
}

// NewSetQuantityUseCase 创建设置数量用例
func NewSetQuantityUseCase(basketRepo basket.Repository, bookRepo book.Repository, txManager TxRunner) *SetQuantityUseCase {
	return &SetQuantityUseCase{
		basketRepo: basketRepo,
		bookRepo:   bookRepo,
		txManager:  txManager,
	}
}

// SetQuantityRequest 设置数量请求DTO
type SetQuantityRequest struct {
	UserID   uint
	BookID   uint
	Quantity int
}

// SetQuantityResponse 设置数量响应DTO
type SetQuantityResponse struct {
	BookID   uint `json:"book_id"`
	Quantity int  `json:"quantity"`
	Removed  bool `json:"removed"`
}

// Execute 执行设置数量
func (uc *SetQuantityUseCase) Execute(ctx context.Context, req SetQuantityRequest) (*SetQuantityResponse, error) {
	var resp *SetQuantityResponse
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 图书必须存在,正数数量还要求库存够(预检,权威检查在确认购买)
		b, err := uc.bookRepo.FindByID(txCtx, req.BookID)
		if err != nil {
			return err
		}
		if req.Quantity > 0 && !b.HasStock(req.Quantity) {
			return book.ErrInsufficientStock
		}

		// 置0及以下走删除,重复请求不报错
		if req.Quantity < basket.MinQuantity {
			if _, err := uc.basketRepo.DeleteItem(txCtx, req.UserID, req.BookID); err != nil {
				return err
			}
			resp = &SetQuantityResponse{BookID: req.BookID, Quantity: 0, Removed: true}
			return nil
		}

		// 锁定后覆盖,与增减数量共享同一把行锁,互不覆盖
		item, err := uc.basketRepo.FindItemForUpdate(txCtx, req.UserID, req.BookID)
		if err != nil {
			return err
		}
		if err := item.SetQuantity(req.Quantity); err != nil {
			return err
		}
		if err := uc.basketRepo.UpdateQuantity(txCtx, req.UserID, req.BookID, item.Quantity); err != nil {
			return err
		}
		resp = &SetQuantityResponse{BookID: req.BookID, Quantity: item.Quantity}
		return nil
	})

	if err != nil {
		metrics.IncCounterVec(metrics.BasketMutationsTotal,
			map[string]string{"op": "set", "result": "error"})
		return nil, err
	}

	metrics.IncCounterVec(metrics.BasketMutationsTotal,
		map[string]string{"op": "set", "result": "ok"})
	return resp, nil
}
