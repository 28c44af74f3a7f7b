package catalog

import (
	"strings"

	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/models"
)

// ProductFields 商品搜索字段：名称、描述、分类名、编码
var ProductFields = []Field[models.Product]{
	Text(func(p models.Product) string { return p.Name }),
	Text(func(p models.Product) string { return p.Description }),
	optional(func(p models.Product) string {
		if p.Category == nil {
			return ""
		}
		return p.Category.Name
	}),
	optional(func(p models.Product) string { return p.Code }),
}

// CategoryFields 分类搜索字段
var CategoryFields = []Field[models.Category]{
	Text(func(c models.Category) string { return c.Name }),
	Text(func(c models.Category) string { return c.Description }),
}

// LicenseKeyFields 授权密钥搜索字段
var LicenseKeyFields = []Field[models.LicenseKey]{
	Text(func(k models.LicenseKey) string { return k.Content }),
	Text(func(k models.LicenseKey) string { return k.ProductName }),
	Text(func(k models.LicenseKey) string { return k.Code }),
	Text(func(k models.LicenseKey) string { return k.Validity }),
}

// UserFields 用户搜索字段
var UserFields = []Field[models.User]{
	Text(func(u models.User) string { return u.FullName }),
	Text(func(u models.User) string { return u.Email }),
	optional(func(u models.User) string { return u.Phone }),
	Text(func(u models.User) string { return u.Username }),
}

// PaymentMethodFields 支付方式搜索字段
var PaymentMethodFields = []Field[models.PaymentMethod]{
	Text(func(m models.PaymentMethod) string { return m.Name }),
	Text(func(m models.PaymentMethod) string { return m.Description }),
}

// ActionFields 单据搜索字段：客户名、销售员、单据编号、类型
var ActionFields = []Field[models.Action]{
	optional(func(a models.Action) string { return a.ClientName }),
	optional(func(a models.Action) string { return a.SellerName }),
	optional(func(a models.Action) string { return a.Code }),
	Text(func(a models.Action) string { return a.Type }),
}

// FailedEmailFields 发送失败邮件搜索字段
var FailedEmailFields = []Field[models.FailedEmail]{
	optional(func(e models.FailedEmail) string { return e.ClientName }),
	optional(func(e models.FailedEmail) string { return e.ClientEmail }),
	optional(func(e models.FailedEmail) string { return e.ActionCode }),
	Text(func(e models.FailedEmail) string { return e.Error }),
}

// ByValidity 按有效期精确过滤商品，"all" 或空值原样返回
func ByValidity(products []models.Product, validity string) []models.Product {
	validity = strings.TrimSpace(validity)
	if validity == "" || validity == constants.ValidityAll {
		return products
	}
	return Where(products, func(p models.Product) bool {
		return p.Validity == validity
	})
}

// ByCategory 按分类过滤商品，0 表示不过滤
func ByCategory(products []models.Product, categoryID uint) []models.Product {
	if categoryID == 0 {
		return products
	}
	return Where(products, func(p models.Product) bool {
		return p.Category != nil && p.Category.ID == categoryID
	})
}

func optional[T any](get func(item T) string) Field[T] {
	return func(item T) (string, bool) {
		value := get(item)
		return value, value != ""
	}
}
