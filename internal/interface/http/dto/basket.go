package dto

// ChangeQuantityRequest HTTP增减购物车数量请求
// delta为正数加、负数减;条目不存在且delta>=1时新建
// 减到1以下会被拒绝,删除条目走DELETE接口
type ChangeQuantityRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
	Delta  int  `json:"delta" binding:"required" example:"1"` // 不能为0
}

// SetQuantityRequest HTTP设置购物车数量请求
// quantity<=0等价于删除该条目
type SetQuantityRequest struct {
	Quantity int `json:"quantity" example:"3"`
}

// BasketMutationResponse HTTP购物车变更响应
type BasketMutationResponse struct {
	BookID   uint `json:"book_id" example:"1"`
	Quantity int  `json:"quantity" example:"3"` // 调整后数量,0表示已删除
	Removed  bool `json:"removed" example:"false"`
}

// RemoveItemResponse HTTP移除条目响应
// removed=false表示条目本来就不存在(删除依然算成功)
type RemoveItemResponse struct {
	BookID  uint `json:"book_id" example:"1"`
	Removed bool `json:"removed" example:"true"`
}

// ClearBasketResponse HTTP清空购物车响应
type ClearBasketResponse struct {
	Removed int64 `json:"removed" example:"2"` // 实际删除的条目数
}

// ListHistoryRequest HTTP购买历史查询请求
type ListHistoryRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}
