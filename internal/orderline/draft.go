// Package orderline 维护后台草稿订单的明细行，并计算与已持久化明细之间的增删改计划。
package orderline

import (
	"errors"
	"fmt"

	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/models"
)

var (
	// ErrProductNotFound 商品不在目录中
	ErrProductNotFound = errors.New("orderline: product not found")
	// ErrInvalidQuantity 数量必须大于 0
	ErrInvalidQuantity = errors.New("orderline: quantity must be at least 1")
	// ErrLineIndexOutOfRange 行下标越界
	ErrLineIndexOutOfRange = errors.New("orderline: line index out of range")
)

// Catalog 按 ID 查找商品
type Catalog interface {
	Product(id uint) (models.Product, bool)
}

// ProductIndex 以商品 ID 为键的目录
type ProductIndex map[uint]models.Product

// IndexProducts 构建商品目录索引
func IndexProducts(products []models.Product) ProductIndex {
	index := make(ProductIndex, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}

// Product 实现 Catalog
func (idx ProductIndex) Product(id uint) (models.Product, bool) {
	p, ok := idx[id]
	return p, ok
}

// Draft 草稿订单（销售或报价）
type Draft struct {
	ID               *uint
	Type             string
	Price            models.Money
	Paid             bool
	Delivered        bool
	ClientID         uint
	SellerID         *uint
	PaymentMethodID  uint
	PaymentReference string
	Comment          string
	Lines            []Line
}

// NewDraft 新建空草稿
func NewDraft(actionType string) *Draft {
	if actionType == "" {
		actionType = constants.ActionTypePurchase
	}
	return &Draft{Type: actionType, Price: models.ZeroMoney()}
}

// EditDraft 以已持久化的单据和明细初始化草稿
func EditDraft(action models.Action, persisted []models.ActionLine) *Draft {
	id := action.ID
	d := &Draft{
		ID:               &id,
		Type:             action.Type,
		Paid:             action.Paid,
		Delivered:        action.Delivered,
		ClientID:         action.ClientID,
		SellerID:         action.SellerID,
		PaymentMethodID:  action.PaymentMethodID,
		PaymentReference: action.PaymentReference,
		Comment:          action.Comment,
	}
	for _, line := range persisted {
		if line.ActionID != 0 && line.ActionID != action.ID {
			continue
		}
		d.Lines = append(d.Lines, FromActionLine(line))
	}
	d.Recompute()
	return d
}

// AddLine 追加新行并重新计算价格
func (d *Draft) AddLine(catalog Catalog, productID uint, quantity int) (NewLine, error) {
	if quantity < 1 {
		return NewLine{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	product, ok := catalog.Product(productID)
	if !ok {
		return NewLine{}, fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
	}
	line := NewLine{Item: Item{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.UnitPrice,
	}}
	d.Lines = append(d.Lines, line)
	d.Recompute()
	return line, nil
}

// RemoveLine 删除指定下标的行并重新计算价格
func (d *Draft) RemoveLine(index int) (Line, error) {
	if index < 0 || index >= len(d.Lines) {
		return nil, fmt.Errorf("%w: %d of %d", ErrLineIndexOutOfRange, index, len(d.Lines))
	}
	removed := d.Lines[index]
	d.Lines = append(d.Lines[:index], d.Lines[index+1:]...)
	d.Recompute()
	return removed, nil
}

// Recompute 价格等于各行小计之和
func (d *Draft) Recompute() {
	total := models.ZeroMoney()
	for _, line := range d.Lines {
		total = total.Plus(line.LineTotal())
	}
	d.Price = total
}

// Header 转换为后端单据头
func (d *Draft) Header() models.Action {
	action := models.Action{
		Type:             d.Type,
		Price:            d.Price,
		Paid:             d.Paid,
		Delivered:        d.Delivered,
		ClientID:         d.ClientID,
		SellerID:         d.SellerID,
		PaymentMethodID:  d.PaymentMethodID,
		PaymentReference: d.PaymentReference,
		Comment:          d.Comment,
	}
	if d.ID != nil {
		action.ID = *d.ID
	}
	return action
}
