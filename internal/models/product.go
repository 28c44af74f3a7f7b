package models

// CategoryRef 商品所属分类引用
type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
}

// Product 商品（授权或设备），权威数据由后端维护
type Product struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	UnitPrice   Money        `json:"unit_price"`
	Category    *CategoryRef `json:"category,omitempty"`
	Code        string       `json:"code,omitempty"`
	Validity    string       `json:"validity,omitempty"`
	Image       string       `json:"image,omitempty"`
	MinPrice    *Money       `json:"min_price,omitempty"`
	MaxPrice    *Money       `json:"max_price,omitempty"`
}

// Category 商品分类
type Category struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// PaymentMethod 支付方式（手动填写付款凭证）
type PaymentMethod struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// LicenseKey 授权密钥
type LicenseKey struct {
	ID          uint   `json:"id"`
	Content     string `json:"content"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Code        string `json:"code"`
	Validity    string `json:"validity"`
}
