package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/licence-store/internal/models"
)

// Resource 后端一类 REST 资源的增删改查
type Resource[T any, In Validatable] struct {
	client *Client
	path   string
}

// List 列表
func (r Resource[T, In]) List(ctx context.Context, auth *Auth, query url.Values) ([]T, error) {
	var items []T
	if err := r.client.do(ctx, call{method: http.MethodGet, path: r.path, query: query, out: &items, auth: auth}); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get 详情
func (r Resource[T, In]) Get(ctx context.Context, auth *Auth, id uint) (*T, error) {
	var item T
	if err := r.client.do(ctx, call{method: http.MethodGet, path: r.itemPath(id), out: &item, auth: auth}); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create 创建
func (r Resource[T, In]) Create(ctx context.Context, auth *Auth, in In) (*T, error) {
	var item T
	if err := r.client.do(ctx, call{method: http.MethodPost, path: r.path, body: in, out: &item, auth: auth}); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update 更新
func (r Resource[T, In]) Update(ctx context.Context, auth *Auth, id uint, in In) (*T, error) {
	var item T
	if err := r.client.do(ctx, call{method: http.MethodPut, path: r.itemPath(id), body: in, out: &item, auth: auth}); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete 删除
func (r Resource[T, In]) Delete(ctx context.Context, auth *Auth, id uint) error {
	return r.client.do(ctx, call{method: http.MethodDelete, path: r.itemPath(id), auth: auth})
}

func (r Resource[T, In]) itemPath(id uint) string {
	return r.path + "/" + strconv.FormatUint(uint64(id), 10)
}

// Products 商品资源
func (c *Client) Products() Resource[models.Product, ProductInput] {
	return Resource[models.Product, ProductInput]{client: c, path: "/products"}
}

// Categories 分类资源
func (c *Client) Categories() Resource[models.Category, CategoryInput] {
	return Resource[models.Category, CategoryInput]{client: c, path: "/categories"}
}

// PaymentMethods 支付方式资源
func (c *Client) PaymentMethods() Resource[models.PaymentMethod, PaymentMethodInput] {
	return Resource[models.PaymentMethod, PaymentMethodInput]{client: c, path: "/payment-methods"}
}

// LicenseKeys 授权密钥资源
func (c *Client) LicenseKeys() Resource[models.LicenseKey, LicenseKeyInput] {
	return Resource[models.LicenseKey, LicenseKeyInput]{client: c, path: "/keys"}
}

// Users 用户资源
func (c *Client) Users() Resource[models.User, UserInput] {
	return Resource[models.User, UserInput]{client: c, path: "/users"}
}

// Orders 单据资源
func (c *Client) Orders() Resource[models.Action, ActionInput] {
	return Resource[models.Action, ActionInput]{client: c, path: "/orders"}
}

// OrderLines 明细行资源
func (c *Client) OrderLines() Resource[models.ActionLine, OrderLineInput] {
	return Resource[models.ActionLine, OrderLineInput]{client: c, path: "/order-lines"}
}

func decodeInto(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return nil
}
