package admin

import (
	"strconv"

	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/i18n"
	"github.com/licence-store/internal/service"

	"github.com/gin-gonic/gin"
)

// ResolveFailedEmailRequest 处理状态
type ResolveFailedEmailRequest struct {
	Resolved *bool `json:"resolved" binding:"required"`
}

// ListFailedEmails 失败邮件列表，include_resolved=true 时包含已处理记录
func (h *Handler) ListFailedEmails(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	includeResolved, _ := strconv.ParseBool(c.Query("include_resolved"))
	page, pageSize := shared.QueryPagination(c)
	result, err := h.AdminResourceService.ListFailedEmails(c.Request.Context(), userID, service.ResourceQuery{
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	}, includeResolved)
	if err != nil {
		shared.RespondMappedError(c, err, shared.BackendErrorRules)
		return
	}
	response.SuccessWithPage(c, result.Items, response.NewPagination(result.Page, result.PageSize, result.Total))
}

// GetFailedEmail 失败邮件详情
func (h *Handler) GetFailedEmail(c *gin.Context) {
	resourceRoutes(h.AdminResourceService.FailedEmails).Get(c)
}

// DeleteFailedEmail 删除失败邮件记录
func (h *Handler) DeleteFailedEmail(c *gin.Context) {
	resourceRoutes(h.AdminResourceService.FailedEmails).Delete(c)
}

// ResolveFailedEmail 标记已处理或重新打开
func (h *Handler) ResolveFailedEmail(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req ResolveFailedEmailRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	email, err := h.AdminResourceService.ResolveFailedEmail(c.Request.Context(), userID, id, *req.Resolved)
	if err != nil {
		shared.RespondMappedError(c, err, failedEmailErrorRules, shared.BackendErrorRules)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "failed_email.updated"), email)
}

// RetryFailedEmail 重新发送
func (h *Handler) RetryFailedEmail(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.AdminResourceService.RetryFailedEmail(c.Request.Context(), userID, id); err != nil {
		shared.RespondMappedError(c, err, failedEmailErrorRules, shared.BackendErrorRules)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "failed_email.retried"), nil)
}
