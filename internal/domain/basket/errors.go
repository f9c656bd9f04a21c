package basket

import (
	apperrors "github.com/xiebiao/libshop/pkg/errors"
)

// 购物车领域错误定义
var (
	// ErrItemNotFound 购物车条目不存在
	ErrItemNotFound = apperrors.New(apperrors.ErrCodeBasketItemNotFound, "购物车条目不存在")

	// ErrQuantityBelowMinimum 数量低于下限
	ErrQuantityBelowMinimum = apperrors.New(apperrors.ErrCodeQuantityBelowMin, "购物车数量不能低于1")

	// ErrInvalidDelta 无效的数量增量
	ErrInvalidDelta = apperrors.New(apperrors.ErrCodeInvalidParams, "数量增量不能为0")
)
