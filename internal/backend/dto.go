package backend

import (
	"fmt"
	"reflect"

	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if m, ok := field.Interface().(models.Money); ok {
			f, _ := m.Float64()
			return f
		}
		return nil
	}, models.Money{})
	_ = v.RegisterValidation("validity", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", constants.ValidityOneYear, constants.ValidityTwoYears, constants.ValidityThreeYear, constants.ValidityLifetime:
			return true
		}
		return false
	})
	return v
}

// Validatable 请求体在构建请求前自校验
type Validatable interface {
	Validate() error
}

func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// TokenPair 后端签发的访问令牌与刷新令牌
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

// Validate 校验
func (r LoginRequest) Validate() error { return validateStruct(r) }

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Validate 校验
func (r RefreshRequest) Validate() error { return validateStruct(r) }

// SignupRequest 注册请求，新用户固定为 client 角色
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Address  string `json:"address" validate:"omitempty,max=255"`
}

// Validate 校验
func (r SignupRequest) Validate() error { return validateStruct(r) }

// PasswordResetRequest 找回密码，后端向该邮箱发送重置链接
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// Validate 校验
func (r PasswordResetRequest) Validate() error { return validateStruct(r) }

// ProfileInput 个人资料更新
type ProfileInput struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Address  string `json:"address" validate:"omitempty,max=255"`
}

// Validate 校验
func (r ProfileInput) Validate() error { return validateStruct(r) }

// UserInput 后台用户维护
type UserInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Address  string `json:"address" validate:"omitempty,max=255"`
	Role     string `json:"role" validate:"required,oneof=client vendeur admin"`
	IsActive bool   `json:"is_active"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// Validate 校验
func (r UserInput) Validate() error { return validateStruct(r) }

// CategoryInput 分类维护
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Image       string `json:"image,omitempty" validate:"omitempty,max=500"`
}

// Validate 校验
func (r CategoryInput) Validate() error { return validateStruct(r) }

// ProductInput 商品维护
type ProductInput struct {
	Name        string        `json:"name" validate:"required,max=255"`
	Description string        `json:"description" validate:"max=5000"`
	UnitPrice   models.Money  `json:"unit_price" validate:"gte=0"`
	CategoryID  uint          `json:"category_id" validate:"required"`
	Code        string        `json:"code,omitempty" validate:"max=64"`
	Validity    string        `json:"validity,omitempty" validate:"validity"`
	Image       string        `json:"image,omitempty" validate:"omitempty,max=500"`
	MinPrice    *models.Money `json:"min_price,omitempty" validate:"omitempty,gte=0"`
	MaxPrice    *models.Money `json:"max_price,omitempty" validate:"omitempty,gte=0"`
}

// Validate 校验，最低价不得高于最高价
func (r ProductInput) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.MinPrice != nil && r.MaxPrice != nil && r.MinPrice.GreaterThan(r.MaxPrice.Decimal) {
		return fmt.Errorf("%w: min_price greater than max_price", ErrInvalidRequest)
	}
	return nil
}

// PaymentMethodInput 支付方式维护
type PaymentMethodInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Image       string `json:"image,omitempty" validate:"omitempty,max=500"`
}

// Validate 校验
func (r PaymentMethodInput) Validate() error { return validateStruct(r) }

// LicenseKeyInput 授权密钥维护
type LicenseKeyInput struct {
	Content   string `json:"content" validate:"required"`
	ProductID uint   `json:"product_id" validate:"required"`
	Code      string `json:"code" validate:"max=64"`
	Validity  string `json:"validity" validate:"validity"`
}

// Validate 校验
func (r LicenseKeyInput) Validate() error { return validateStruct(r) }

// ActionInput 单据头创建或更新
type ActionInput struct {
	Type             string       `json:"type" validate:"required,oneof=achat devis"`
	Price            models.Money `json:"price" validate:"gte=0"`
	Paid             bool         `json:"paid"`
	Delivered        bool         `json:"delivered"`
	ClientID         uint         `json:"client_id" validate:"required"`
	SellerID         *uint        `json:"seller_id,omitempty"`
	PaymentMethodID  uint         `json:"payment_method_id" validate:"required"`
	PaymentReference string       `json:"payment_reference,omitempty" validate:"max=255"`
	Comment          string       `json:"comment,omitempty" validate:"max=2000"`
}

// Validate 校验
func (r ActionInput) Validate() error { return validateStruct(r) }

// ActionInputFrom 从单据头构建请求
func ActionInputFrom(a models.Action) ActionInput {
	return ActionInput{
		Type:             a.Type,
		Price:            a.Price,
		Paid:             a.Paid,
		Delivered:        a.Delivered,
		ClientID:         a.ClientID,
		SellerID:         a.SellerID,
		PaymentMethodID:  a.PaymentMethodID,
		PaymentReference: a.PaymentReference,
		Comment:          a.Comment,
	}
}

// OrderLineInput 明细行创建或更新
type OrderLineInput struct {
	ActionID  uint         `json:"action_id" validate:"required"`
	ProductID uint         `json:"product_id" validate:"required"`
	Quantity  int          `json:"quantity" validate:"min=1"`
	UnitPrice models.Money `json:"unit_price" validate:"gte=0"`
	LineTotal models.Money `json:"line_total" validate:"gte=0"`
}

// Validate 校验
func (r OrderLineInput) Validate() error { return validateStruct(r) }

// CheckoutItem 结算商品
type CheckoutItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"min=1"`
}

// CheckoutRequest 结算请求：购买单据头 + 商品列表 + 手动付款凭证
type CheckoutRequest struct {
	PaymentMethodID  uint           `json:"payment_method_id" validate:"required"`
	PaymentReference string         `json:"payment_reference" validate:"required,max=255"`
	Comment          string         `json:"comment,omitempty" validate:"max=2000"`
	Items            []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

// Validate 校验
func (r CheckoutRequest) Validate() error { return validateStruct(r) }

// FailedEmailInput 失败邮件处理状态
type FailedEmailInput struct {
	Resolved bool `json:"resolved"`
}

// Validate 校验
func (r FailedEmailInput) Validate() error { return validateStruct(r) }
