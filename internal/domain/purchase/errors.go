package purchase

import (
	apperrors "github.com/xiebiao/libshop/pkg/errors"
)

// 购买记录领域错误定义
var (
	// ErrRecordNotFound 购买记录不存在
	ErrRecordNotFound = apperrors.New(apperrors.ErrCodePurchaseNotFound, "购买记录不存在")

	// ErrInvalidQuantity 无效的购买数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
)
