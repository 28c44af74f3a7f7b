package shared

import (
	"errors"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/i18n"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString(constants.ContextKeyRequestID); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondAppError(c, response.WrapError(code, key, err))
}

// RespondAppError 按 key 本地化文案后输出；服务端错误记 error 日志，其余有原始错误时记 info
func RespondAppError(c *gin.Context, appErr *response.AppError) {
	msg := i18n.T(i18n.ResolveLocale(c), appErr.Key)
	switch {
	case appErr.Err == nil:
	case appErr.Internal():
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", msg,
			"error", appErr.Err,
		)
	default:
		RequestLog(c).Infow("handler_mapped_error", "code", appErr.Code, "error", appErr.Err)
	}
	response.Error(c, appErr.Code, msg)
}

// MappedError 业务错误到接口错误响应的映射
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// BackendErrorRules 后端调用的通用映射，放在各接口规则之后兜底
var BackendErrorRules = []MappedError{
	{Target: service.ErrSessionExpired, Code: response.CodeUnauthorized, Key: "error.session_expired"},
	{Target: backend.ErrUnauthorized, Code: response.CodeUnauthorized, Key: "error.session_expired"},
	{Target: backend.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: backend.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: backend.ErrInvalidRequest, Code: response.CodeBadRequest, Key: "error.payload_invalid"},
	{Target: backend.ErrRejected, Code: response.CodeBadRequest, Key: "error.backend_rejected"},
	{Target: backend.ErrUnavailable, Code: response.CodeBadGateway, Key: "error.backend_unavailable"},
	{Target: backend.ErrRequestFailed, Code: response.CodeBadGateway, Key: "error.backend_unavailable"},
	{Target: backend.ErrResponseInvalid, Code: response.CodeBadGateway, Key: "error.backend_unavailable"},
}

// ResolveError 把错误归类为 AppError：错误链中已有 AppError 时直接采用，
// 否则按规则顺序匹配，未命中时归为 500。
func ResolveError(err error, rules ...[]MappedError) *response.AppError {
	if appErr, ok := response.AsAppError(err); ok {
		return appErr
	}
	for _, group := range rules {
		for _, rule := range group {
			if errors.Is(err, rule.Target) {
				return response.WrapError(rule.Code, rule.Key, err)
			}
		}
	}
	return response.WrapError(response.CodeInternal, "error.internal", err)
}

// RespondMappedError 按规则顺序匹配错误，未命中时返回 500 并记录日志。
func RespondMappedError(c *gin.Context, err error, rules ...[]MappedError) {
	RespondAppError(c, ResolveError(err, rules...))
}
