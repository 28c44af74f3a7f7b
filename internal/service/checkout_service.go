package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/telemetry"
)

// CheckoutInput 结账输入
type CheckoutInput struct {
	SessionID        string
	UserID           uint
	PaymentMethodID  uint
	PaymentReference string
	Comment          string
}

// CheckoutService 结账服务：校验支付方式与购物车后提交购买单据，成功后清空购物车
type CheckoutService struct {
	backend *backend.Client
	auth    *AuthService
	carts   *CartService
	catalog *CatalogService
	metrics *telemetry.Metrics
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(client *backend.Client, auth *AuthService, carts *CartService, catalogService *CatalogService, metrics *telemetry.Metrics) *CheckoutService {
	return &CheckoutService{
		backend: client,
		auth:    auth,
		carts:   carts,
		catalog: catalogService,
		metrics: metrics,
	}
}

// Checkout 提交购物车
func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*models.Action, error) {
	reference := strings.TrimSpace(input.PaymentReference)
	if reference == "" {
		return nil, ErrPaymentReferenceMissing
	}
	if input.PaymentMethodID == 0 {
		return nil, ErrPaymentMethodInvalid
	}
	if _, ok, err := s.catalog.PaymentMethod(ctx, input.PaymentMethodID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrPaymentMethodInvalid
	}

	sessionID := NormalizeSessionID(input.SessionID)
	lock := s.carts.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	st, _ := s.carts.Open(ctx, sessionID)
	if st.IsEmpty() {
		return nil, ErrCartEmpty
	}

	lines := st.Lines()
	req := backend.CheckoutRequest{
		PaymentMethodID:  input.PaymentMethodID,
		PaymentReference: reference,
		Comment:          strings.TrimSpace(input.Comment),
		Items:            make([]backend.CheckoutItem, 0, len(lines)),
	}
	for _, line := range lines {
		req.Items = append(req.Items, backend.CheckoutItem{ProductID: line.Product.ID, Quantity: line.Quantity})
	}

	var action *models.Action
	err := s.auth.WithSession(ctx, input.UserID, func(auth *backend.Auth) error {
		var err error
		action, err = s.backend.Checkout(ctx, auth, req)
		return err
	})
	s.metrics.RecordCheckout(ctx, err)
	if err != nil {
		logger.Warnw("checkout_failed",
			"user_id", input.UserID,
			"items", len(req.Items),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	total := st.Total()
	st.Clear(ctx)
	logger.Infow("checkout_done",
		"user_id", input.UserID,
		"action_id", action.ID,
		"total", total.String(),
	)
	return action, nil
}
