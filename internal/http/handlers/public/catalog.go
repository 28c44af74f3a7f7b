package public

import (
	"strconv"
	"strings"

	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品列表：关键字、有效期、分类筛选并分页
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := shared.QueryPagination(c)
	categoryID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("category_id")), 10, 64)
	result, err := h.CatalogService.SearchProducts(c.Request.Context(), service.ProductQuery{
		Query:      c.Query("q"),
		Validity:   c.Query("validity"),
		CategoryID: uint(categoryID),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		shared.RespondMappedError(c, err, catalogErrorRules)
		return
	}
	response.SuccessWithPage(c, result.Items, response.NewPagination(result.Page, result.PageSize, result.Total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	product, found, err := h.CatalogService.Product(c.Request.Context(), id)
	if err != nil {
		shared.RespondMappedError(c, err, catalogErrorRules)
		return
	}
	if !found {
		shared.RespondError(c, response.CodeNotFound, "error.product_not_found", nil)
		return
	}
	response.Success(c, product)
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	items, err := h.CatalogService.SearchCategories(c.Request.Context(), c.Query("q"))
	if err != nil {
		shared.RespondMappedError(c, err, catalogErrorRules)
		return
	}
	response.Success(c, items)
}

// ListPaymentMethods 支付方式列表
func (h *Handler) ListPaymentMethods(c *gin.Context) {
	items, err := h.CatalogService.SearchPaymentMethods(c.Request.Context(), c.Query("q"))
	if err != nil {
		shared.RespondMappedError(c, err, catalogErrorRules)
		return
	}
	response.Success(c, items)
}
