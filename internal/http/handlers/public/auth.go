package public

import (
	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/i18n"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 用户登录，返回网关会话令牌
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	result, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		shared.RespondMappedError(c, err, loginErrorRules, shared.BackendErrorRules)
		return
	}
	response.Success(c, gin.H{
		"user":       result.User,
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
	})
}

// Signup 注册客户账号
func (h *Handler) Signup(c *gin.Context) {
	var req backend.SignupRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	user, err := h.AuthService.Signup(c.Request.Context(), req)
	if err != nil {
		shared.RespondMappedError(c, err, signupErrorRules, shared.BackendErrorRules)
		return
	}
	response.Success(c, user)
}

// PasswordResetRequest 找回密码请求
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// RequestPasswordReset 发送密码重置邮件
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	if err := h.AuthService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		shared.RespondMappedError(c, err, passwordResetErrorRules, shared.BackendErrorRules)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "auth.password_reset_sent"), nil)
}

// Logout 注销并丢弃后端令牌
func (h *Handler) Logout(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	if err := h.AuthService.Logout(c.Request.Context(), userID); err != nil {
		shared.RespondMappedError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "auth.logged_out"), nil)
}
