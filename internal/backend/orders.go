package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/orderline"
)

// ListOrders 单据列表，actionType 为空时返回全部类型
func (c *Client) ListOrders(ctx context.Context, auth *Auth, actionType string) ([]models.Action, error) {
	query := url.Values{}
	if actionType != "" {
		query.Set("type", actionType)
	}
	return c.Orders().List(ctx, auth, query)
}

// ApproveOrder 确认收款并交付
func (c *Client) ApproveOrder(ctx context.Context, auth *Auth, id uint) (*models.Action, error) {
	var action models.Action
	path := "/orders/" + strconv.FormatUint(uint64(id), 10) + "/approve"
	if err := c.do(ctx, call{method: http.MethodPost, path: path, out: &action, auth: auth}); err != nil {
		return nil, err
	}
	return &action, nil
}

// ListOrderLines 单据已持久化的明细行
func (c *Client) ListOrderLines(ctx context.Context, auth *Auth, orderID uint) ([]models.ActionLine, error) {
	query := url.Values{}
	query.Set("order", strconv.FormatUint(uint64(orderID), 10))
	return c.OrderLines().List(ctx, auth, query)
}

// Checkout 提交购物车，后端创建购买单据及其明细
func (c *Client) Checkout(ctx context.Context, auth *Auth, req CheckoutRequest) (*models.Action, error) {
	var action models.Action
	if err := c.do(ctx, call{method: http.MethodPost, path: "/checkout", body: req, out: &action, auth: auth}); err != nil {
		return nil, err
	}
	return &action, nil
}

// LineWriter 返回以 auth 身份执行明细操作的 orderline.LineWriter
func (c *Client) LineWriter(auth *Auth) orderline.LineWriter {
	return lineWriter{client: c, auth: auth}
}

type lineWriter struct {
	client *Client
	auth   *Auth
}

func (w lineWriter) CreateLine(ctx context.Context, orderID uint, item orderline.Item) error {
	_, err := w.client.OrderLines().Create(ctx, w.auth, lineInput(orderID, item))
	return err
}

func (w lineWriter) UpdateLine(ctx context.Context, orderID, lineID uint, item orderline.Item) error {
	_, err := w.client.OrderLines().Update(ctx, w.auth, lineID, lineInput(orderID, item))
	return err
}

func (w lineWriter) DeleteLine(ctx context.Context, lineID uint) error {
	return w.client.OrderLines().Delete(ctx, w.auth, lineID)
}

func lineInput(orderID uint, item orderline.Item) OrderLineInput {
	return OrderLineInput{
		ActionID:  orderID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal(),
	}
}
