package service

import (
	"errors"

	"github.com/licence-store/internal/orderline"
)

// 服务层错误，处理器通过 errors.Is 映射为业务码
var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrTokenInvalid            = errors.New("session token invalid")
	ErrSessionExpired          = errors.New("backend session expired")
	ErrProductNotFound         = orderline.ErrProductNotFound
	ErrQuantityInvalid         = orderline.ErrInvalidQuantity
	ErrLineIndexInvalid        = orderline.ErrLineIndexOutOfRange
	ErrCartEmpty               = errors.New("cart is empty")
	ErrPaymentMethodInvalid    = errors.New("payment method invalid")
	ErrPaymentReferenceMissing = errors.New("payment reference missing")
	ErrCheckoutFailed          = errors.New("checkout failed")
	ErrDraftNotFound           = errors.New("draft not found")
	ErrDraftClientMissing      = errors.New("draft client missing")
	ErrDraftTypeInvalid        = errors.New("draft type invalid")
	ErrActionNotFound          = errors.New("action not found")
	ErrCatalogUnavailable      = errors.New("catalog unavailable")
	ErrAccountNotFound         = errors.New("account not found")
	ErrFailedEmailNotFound     = errors.New("failed email not found")
)
