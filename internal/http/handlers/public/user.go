package public

import (
	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/i18n"
	"github.com/licence-store/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求，付款为线下手动凭证
type CheckoutRequest struct {
	PaymentMethodID  uint   `json:"payment_method_id" binding:"required"`
	PaymentReference string `json:"payment_reference"`
	Comment          string `json:"comment"`
}

// GetMe 当前用户资料
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.Profile(c.Request.Context(), userID)
	if err != nil {
		shared.RespondMappedError(c, err, shared.BackendErrorRules)
		return
	}
	response.Success(c, user)
}

// UpdateMe 更新个人资料
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	var req backend.ProfileInput
	if !shared.BindJSON(c, &req) {
		return
	}
	user, err := h.AuthService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		shared.RespondMappedError(c, err, shared.BackendErrorRules)
		return
	}
	response.Success(c, user)
}

// Checkout 将购物车提交为购买单据，失败时购物车保持不变
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	action, err := h.CheckoutService.Checkout(c.Request.Context(), service.CheckoutInput{
		SessionID:        shared.CartSessionID(c),
		UserID:           userID,
		PaymentMethodID:  req.PaymentMethodID,
		PaymentReference: req.PaymentReference,
		Comment:          req.Comment,
	})
	if err != nil {
		shared.RespondMappedError(c, err, checkoutErrorRules)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "checkout.done"), action)
}
