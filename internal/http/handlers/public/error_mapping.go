package public

import (
	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/service"
)

var catalogErrorRules = []shared.MappedError{
	{Target: service.ErrCatalogUnavailable, Code: response.CodeBadGateway, Key: "error.catalog_unavailable"},
}

var cartErrorRules = []shared.MappedError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrCatalogUnavailable, Code: response.CodeBadGateway, Key: "error.catalog_unavailable"},
}

var loginErrorRules = []shared.MappedError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.login_invalid"},
}

var signupErrorRules = []shared.MappedError{
	{Target: backend.ErrInvalidRequest, Code: response.CodeBadRequest, Key: "error.payload_invalid"},
	{Target: backend.ErrRejected, Code: response.CodeBadRequest, Key: "error.signup_failed"},
}

var passwordResetErrorRules = []shared.MappedError{
	{Target: service.ErrAccountNotFound, Code: response.CodeNotFound, Key: "error.account_not_found"},
}

// 会话过期必须先于 ErrCheckoutFailed 匹配
var checkoutErrorRules = []shared.MappedError{
	{Target: service.ErrCartEmpty, Code: response.CodeBadRequest, Key: "error.cart_empty"},
	{Target: service.ErrPaymentMethodInvalid, Code: response.CodeBadRequest, Key: "error.payment_method_invalid"},
	{Target: service.ErrPaymentReferenceMissing, Code: response.CodeBadRequest, Key: "error.payment_reference_missing"},
	{Target: service.ErrSessionExpired, Code: response.CodeUnauthorized, Key: "error.session_expired"},
	{Target: service.ErrCatalogUnavailable, Code: response.CodeBadGateway, Key: "error.catalog_unavailable"},
	{Target: service.ErrCheckoutFailed, Code: response.CodeBadGateway, Key: "error.checkout_failed"},
}
