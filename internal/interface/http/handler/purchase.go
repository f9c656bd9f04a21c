package handler

import (
	"github.com/gin-gonic/gin"

	apppurchase "github.com/xiebiao/libshop/internal/application/purchase"
	"github.com/xiebiao/libshop/internal/interface/http/dto"
	"github.com/xiebiao/libshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/libshop/pkg/errors"
	"github.com/xiebiao/libshop/pkg/response"
)

// PurchaseHandler 购买历史HTTP处理器
type PurchaseHandler struct {
	listHistoryUseCase *apppurchase.ListHistoryUseCase
}

// NewPurchaseHandler 创建购买历史处理器
func NewPurchaseHandler(listHistoryUseCase *apppurchase.ListHistoryUseCase) *PurchaseHandler {
	return &PurchaseHandler{listHistoryUseCase: listHistoryUseCase}
}

// ListHistory 查询购买历史
// @Summary      查询购买历史
// @Description  按成交时间倒序分页返回当前用户的购买记录
// @Tags         购买
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20)"
// @Success      200 {object} response.Response{data=response.PageData}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/purchases [get]
func (h *PurchaseHandler) ListHistory(c *gin.Context) {
	var req dto.ListHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	userID := middleware.MustGetUserID(c)

	items, total, err := h.listHistoryUseCase.Execute(c.Request.Context(), userID, req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, items, total, req.Page, req.PageSize)
}
