package models

import "time"

// Action 业务单据（销售或报价）
type Action struct {
	ID               uint       `json:"id"`
	Code             string     `json:"code,omitempty"`
	Type             string     `json:"type"`
	Price            Money      `json:"price"`
	Paid             bool       `json:"paid"`
	Delivered        bool       `json:"delivered"`
	ClientID         uint       `json:"client_id"`
	ClientName       string     `json:"client_name,omitempty"`
	SellerID         *uint      `json:"seller_id,omitempty"`
	SellerName       string     `json:"seller_name,omitempty"`
	PaymentMethodID  uint       `json:"payment_method_id"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	Comment          string     `json:"comment,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// ActionLine 单据明细行
type ActionLine struct {
	ID          uint   `json:"id"`
	ActionID    uint   `json:"action_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unit_price"`
	LineTotal   Money  `json:"line_total"`
}

// SalesStats 销售统计
type SalesStats struct {
	TotalSales     int   `json:"total_sales"`
	TotalRevenue   Money `json:"total_revenue"`
	PaidSales      int   `json:"paid_sales"`
	UnpaidSales    int   `json:"unpaid_sales"`
	DeliveredSales int   `json:"delivered_sales"`
	PendingSales   int   `json:"pending_sales"`
}

// FailedEmail 单据通知邮件发送失败记录，由后端写入
type FailedEmail struct {
	ID          uint       `json:"id"`
	ClientID    uint       `json:"client_id"`
	ClientName  string     `json:"client_name,omitempty"`
	ClientEmail string     `json:"client_email,omitempty"`
	ActionID    uint       `json:"action_id"`
	ActionCode  string     `json:"action_code,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	Error       string     `json:"error"`
	Payload     string     `json:"payload,omitempty"`
	Resolved    bool       `json:"resolved"`
}
