package basket

import (
	"context"

	"github.com/xiebiao/libshop/internal/domain/basket"
	"github.com/xiebiao/libshop/pkg/metrics"
)

// RemoveItemUseCase 移除购物车条目用例
// 删除天然幂等,条目不存在也返回成功,但通过返回值报告是否真的删了行
type RemoveItemUseCase struct {
	basketRepo basket.Repository
}

// NewRemoveItemUseCase 创建移除条目用例
func NewRemoveItemUseCase(basketRepo basket.Repository) *RemoveItemUseCase {
	return &RemoveItemUseCase{basketRepo: basketRepo}
}

// Execute 执行移除条目,返回是否真的删除了条目
func (uc *RemoveItemUseCase) Execute(ctx context.Context, userID, bookID uint) (bool, error) {
	removed, err := uc.basketRepo.DeleteItem(ctx, userID, bookID)
	if err != nil {
		metrics.IncCounterVec(metrics.BasketMutationsTotal,
			map[string]string{"op": "remove", "result": "error"})
		return false, err
	}
	metrics.IncCounterVec(metrics.BasketMutationsTotal,
		map[string]string{"op": "remove", "result": "ok"})
	return removed, nil
}

// ClearBasketUseCase 清空购物车用例
type ClearBasketUseCase struct {
	basketRepo basket.Repository
}

// NewClearBasketUseCase 创建清空购物车用例
func NewClearBasketUseCase(basketRepo basket.Repository) *ClearBasketUseCase {
	return &ClearBasketUseCase{basketRepo: basketRepo}
}

// Execute 执行清空购物车,返回删除的条目数
func (uc *ClearBasketUseCase) Execute(ctx context.Context, userID uint) (int64, error) {
	removed, err := uc.basketRepo.DeleteAllByUserID(ctx, userID)
	if err != nil {
		metrics.IncCounterVec(metrics.BasketMutationsTotal,
			map[string]string{"op": "clear", "result": "error"})
		return 0, err
	}
	metrics.IncCounterVec(metrics.BasketMutationsTotal,
		map[string]string{"op": "clear", "result": "ok"})
	return removed, nil
}
