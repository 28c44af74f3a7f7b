package orderline

import "github.com/licence-store/internal/models"

// Item 订单行的商品、数量与单价
type Item struct {
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	UnitPrice   models.Money `json:"unit_price"`
}

// LineTotal 单价乘以数量
func (i Item) LineTotal() models.Money {
	return i.UnitPrice.Times(i.Quantity)
}

// Detail 返回行内容
func (i Item) Detail() Item {
	return i
}

// Line 草稿订单行，只能是 NewLine 或 ExistingLine
type Line interface {
	Detail() Item
	LineTotal() models.Money
	isLine()
}

// NewLine 本次编辑新增、尚未持久化的行
type NewLine struct {
	Item
}

// ExistingLine 已持久化的行
type ExistingLine struct {
	ID uint `json:"id"`
	Item
}

func (NewLine) isLine()      {}
func (ExistingLine) isLine() {}

// FromActionLine 将后端明细转换为已持久化行
func FromActionLine(line models.ActionLine) ExistingLine {
	return ExistingLine{
		ID: line.ID,
		Item: Item{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		},
	}
}
