package public

import (
	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/i18n"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GetCart 查看购物车
func (h *Handler) GetCart(c *gin.Context) {
	response.Success(c, h.CartService.View(c.Request.Context(), shared.CartSessionID(c)))
}

// AddCartItem 加入商品，已存在时数量加一
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	view, err := h.CartService.AddItem(c.Request.Context(), shared.CartSessionID(c), req.ProductID)
	if err != nil {
		shared.RespondMappedError(c, err, cartErrorRules)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "cart.updated"), view)
}

// RemoveCartItem 移除商品
func (h *Handler) RemoveCartItem(c *gin.Context) {
	productID, ok := shared.ParamUint(c, "product_id")
	if !ok {
		return
	}
	view := h.CartService.RemoveItem(c.Request.Context(), shared.CartSessionID(c), productID)
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "cart.updated"), view)
}

// IncrementCartItem 数量加一
func (h *Handler) IncrementCartItem(c *gin.Context) {
	productID, ok := shared.ParamUint(c, "product_id")
	if !ok {
		return
	}
	response.Success(c, h.CartService.IncrementQuantity(c.Request.Context(), shared.CartSessionID(c), productID))
}

// DecrementCartItem 数量减一，最小为 1
func (h *Handler) DecrementCartItem(c *gin.Context) {
	productID, ok := shared.ParamUint(c, "product_id")
	if !ok {
		return
	}
	response.Success(c, h.CartService.DecrementQuantity(c.Request.Context(), shared.CartSessionID(c), productID))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	view := h.CartService.Clear(c.Request.Context(), shared.CartSessionID(c))
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "cart.cleared"), view)
}
