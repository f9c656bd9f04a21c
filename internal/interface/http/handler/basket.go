package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbasket "github.com/xiebiao/libshop/internal/application/basket"
	"github.com/xiebiao/libshop/internal/interface/http/dto"
	"github.com/xiebiao/libshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/libshop/pkg/errors"
	"github.com/xiebiao/libshop/pkg/response"
)

// BasketHandler 购物车HTTP处理器
type BasketHandler struct {
	getBasketUseCase      *appbasket.GetBasketUseCase
	changeQuantityUseCase *appbasket.ChangeQuantityUseCase
	setQuantityUseCase    *appbasket.SetQuantityUseCase
	removeItemUseCase     *appbasket.RemoveItemUseCase
	clearBasketUseCase    *appbasket.ClearBasketUseCase
	confirmAllUseCase     *appbasket.ConfirmAllUseCase
}

// NewBasketHandler 创建购物车处理器
func NewBasketHandler(
	getBasketUseCase *appbasket.GetBasketUseCase,
	changeQuantityUseCase *appbasket.ChangeQuantityUseCase,
	setQuantityUseCase *appbasket.SetQuantityUseCase,
	removeItemUseCase *appbasket.RemoveItemUseCase,
	clearBasketUseCase *appbasket.ClearBasketUseCase,
	confirmAllUseCase *appbasket.ConfirmAllUseCase,
) *BasketHandler {
	return &BasketHandler{
		getBasketUseCase:      getBasketUseCase,
		changeQuantityUseCase: changeQuantityUseCase,
		setQuantityUseCase:    setQuantityUseCase,
		removeItemUseCase:     removeItemUseCase,
		clearBasketUseCase:    clearBasketUseCase,
		confirmAllUseCase:     confirmAllUseCase,
	}
}

// GetBasket 查询购物车
// @Summary      查询购物车
// @Description  返回当前用户购物车全部条目(含图书当前价与库存状态)
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appbasket.GetBasketResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/basket [get]
func (h *BasketHandler) GetBasket(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.getBasketUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ChangeQuantity 增减购物车数量
// @Summary      增减购物车数量
// @Description  在当前数量上加delta;条目不存在且delta>=1时新建,降到1以下会被拒绝(删除走移除接口)
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ChangeQuantityRequest true "增减信息"
// @Success      200 {object} response.Response{data=dto.BasketMutationResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/basket/items [post]
func (h *BasketHandler) ChangeQuantity(c *gin.Context) {
	var req dto.ChangeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.changeQuantityUseCase.Execute(c.Request.Context(), appbasket.ChangeQuantityRequest{
		UserID: userID,
		BookID: req.BookID,
		Delta:  req.Delta,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BasketMutationResponse{
		BookID:   result.BookID,
		Quantity: result.Quantity,
		Removed:  result.Removed,
	})
}

// SetQuantity 设置购物车数量
// @Summary      设置购物车数量
// @Description  将条目数量覆盖为指定值;quantity<=0等价于删除
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Param        request body dto.SetQuantityRequest true "目标数量"
// @Success      200 {object} response.Response{data=dto.BasketMutationResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "条目不存在"
// @Router       /api/v1/basket/items/{book_id} [put]
func (h *BasketHandler) SetQuantity(c *gin.Context) {
	bookID, err := parseBookID(c)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的图书ID")
		return
	}

	var req dto.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.setQuantityUseCase.Execute(c.Request.Context(), appbasket.SetQuantityRequest{
		UserID:   userID,
		BookID:   bookID,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BasketMutationResponse{
		BookID:   result.BookID,
		Quantity: result.Quantity,
		Removed:  result.Removed,
	})
}

// RemoveItem 移除购物车条目
// @Summary      移除购物车条目
// @Description  删除指定图书的购物车条目(幂等)
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.RemoveItemResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/basket/items/{book_id} [delete]
func (h *BasketHandler) RemoveItem(c *gin.Context) {
	bookID, err := parseBookID(c)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的图书ID")
		return
	}

	userID := middleware.MustGetUserID(c)

	removed, err := h.removeItemUseCase.Execute(c.Request.Context(), userID, bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.RemoveItemResponse{BookID: bookID, Removed: removed})
}

// ClearBasket 清空购物车
// @Summary      清空购物车
// @Description  删除当前用户的全部购物车条目(幂等)
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.ClearBasketResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/basket [delete]
func (h *BasketHandler) ClearBasket(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	removed, err := h.clearBasketUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ClearBasketResponse{Removed: removed})
}

// ConfirmAll 确认购买整个购物车
// @Summary      确认购买
// @Description  锁定并扣减库存、写购买流水、清空购物车,整体在一个事务内
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appbasket.ConfirmAllResponse}
// @Failure      400 {object} response.Response "库存不足"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/basket/confirm [post]
func (h *BasketHandler) ConfirmAll(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.confirmAllUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parseBookID 解析路径参数中的图书ID
func parseBookID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("book_id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidParams
	}
	return uint(id), nil
}
