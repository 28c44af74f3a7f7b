package shared

import (
	"strconv"
	"strings"

	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CurrentUserID 读取会话中间件写入的用户 ID，缺失时直接返回 401。
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		RespondError(c, response.CodeUnauthorized, "error.token_invalid", nil)
		return 0, false
	}
	return userID, true
}

// CartSessionID 购物车会话 ID
func CartSessionID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyCartSession)
}

// ParamUint 解析路径中的正整数参数，失败时返回 400。
func ParamUint(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(value), true
}

// ParamInt 解析路径中的非负整数参数
func ParamInt(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(c.Param(name)))
	if err != nil || value < 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return value, true
}

// BindJSON 解析请求体，失败时返回 400。
func BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		RequestLog(c).Debugw("handler_bind_failed", "error", err)
		RespondError(c, response.CodeBadRequest, "error.payload_invalid", nil)
		return false
	}
	return true
}
