package admin

import (
	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/i18n"
	"github.com/licence-store/internal/service"

	"github.com/gin-gonic/gin"
)

// AddDraftLineRequest 草稿新增明细
type AddDraftLineRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// OpenDraft 新建草稿或载入已有单据
func (h *Handler) OpenDraft(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	var req service.OpenDraftInput
	if !shared.BindJSON(c, &req) {
		return
	}
	view, err := h.DraftOrderService.Open(c.Request.Context(), userID, req)
	if err != nil {
		shared.RespondMappedError(c, err, draftErrorRules, shared.BackendErrorRules)
		return
	}
	response.Success(c, view)
}

// GetDraft 草稿详情
func (h *Handler) GetDraft(c *gin.Context) {
	view, err := h.DraftOrderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		shared.RespondMappedError(c, err, draftErrorRules)
		return
	}
	response.Success(c, view)
}

// UpdateDraft 修改单据头
func (h *Handler) UpdateDraft(c *gin.Context) {
	var req service.DraftHeaderInput
	if !shared.BindJSON(c, &req) {
		return
	}
	view, err := h.DraftOrderService.UpdateHeader(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		shared.RespondMappedError(c, err, draftErrorRules)
		return
	}
	response.Success(c, view)
}

// DiscardDraft 丢弃草稿，不影响后端
func (h *Handler) DiscardDraft(c *gin.Context) {
	if err := h.DraftOrderService.Discard(c.Request.Context(), c.Param("id")); err != nil {
		shared.RespondMappedError(c, err, draftErrorRules)
		return
	}
	response.Success(c, gin.H{"id": c.Param("id")})
}

// AddDraftLine 新增明细，同一商品合并数量
func (h *Handler) AddDraftLine(c *gin.Context) {
	var req AddDraftLineRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	view, err := h.DraftOrderService.AddLine(c.Request.Context(), c.Param("id"), req.ProductID, req.Quantity)
	if err != nil {
		shared.RespondMappedError(c, err, draftErrorRules)
		return
	}
	response.Success(c, view)
}

// RemoveDraftLine 按下标删除明细
func (h *Handler) RemoveDraftLine(c *gin.Context) {
	index, ok := shared.ParamInt(c, "index")
	if !ok {
		return
	}
	view, err := h.DraftOrderService.RemoveLine(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		shared.RespondMappedError(c, err, draftErrorRules)
		return
	}
	response.Success(c, view)
}

// SubmitDraft 提交草稿：写入单据头并按差异同步明细
func (h *Handler) SubmitDraft(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	result, err := h.DraftOrderService.Submit(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		shared.RespondMappedError(c, err, draftErrorRules, shared.BackendErrorRules)
		return
	}
	key := "draft.submitted"
	if result.Status == service.DraftSubmitPartial {
		key = "error.draft_submit_partial"
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), key), result)
}
