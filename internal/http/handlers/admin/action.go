package admin

import (
	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/i18n"

	"github.com/gin-gonic/gin"
)

// ListActions 单据列表，支持 type=achat|devis 与关键字
func (h *Handler) ListActions(c *gin.Context) {
	resourceRoutes(h.AdminResourceService.Actions).List(c)
}

// GetAction 单据详情
func (h *Handler) GetAction(c *gin.Context) {
	resourceRoutes(h.AdminResourceService.Actions).Get(c)
}

// DeleteAction 删除单据
func (h *Handler) DeleteAction(c *gin.Context) {
	resourceRoutes(h.AdminResourceService.Actions).Delete(c)
}

// ApproveAction 审批单据
func (h *Handler) ApproveAction(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	action, err := h.AdminResourceService.ApproveAction(c.Request.Context(), userID, id)
	if err != nil {
		shared.RespondMappedError(c, err, actionErrorRules, shared.BackendErrorRules)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "action.approved"), action)
}

// GetStats 销售统计
func (h *Handler) GetStats(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	stats, err := h.SalesStatsService.Stats(c.Request.Context(), userID)
	if err != nil {
		shared.RespondMappedError(c, err, shared.BackendErrorRules)
		return
	}
	response.Success(c, stats)
}
