package admin

import (
	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/service"

	"github.com/gin-gonic/gin"
)

// ResourceRoutes 一组后台资源的增删改查处理函数
type ResourceRoutes struct {
	List   gin.HandlerFunc
	Get    gin.HandlerFunc
	Create gin.HandlerFunc
	Update gin.HandlerFunc
	Delete gin.HandlerFunc
}

func resourceRoutes[T any, In backend.Validatable](resource service.AdminResource[T, In]) ResourceRoutes {
	return ResourceRoutes{
		List: func(c *gin.Context) {
			userID, ok := shared.CurrentUserID(c)
			if !ok {
				return
			}
			page, pageSize := shared.QueryPagination(c)
			result, err := resource.List(c.Request.Context(), userID, service.ResourceQuery{
				Query:    c.Query("q"),
				Type:     c.Query("type"),
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				shared.RespondMappedError(c, err, shared.BackendErrorRules)
				return
			}
			response.SuccessWithPage(c, result.Items, response.NewPagination(result.Page, result.PageSize, result.Total))
		},
		Get: func(c *gin.Context) {
			userID, ok := shared.CurrentUserID(c)
			if !ok {
				return
			}
			id, ok := shared.ParamUint(c, "id")
			if !ok {
				return
			}
			item, err := resource.Get(c.Request.Context(), userID, id)
			if err != nil {
				shared.RespondMappedError(c, err, shared.BackendErrorRules)
				return
			}
			response.Success(c, item)
		},
		Create: func(c *gin.Context) {
			userID, ok := shared.CurrentUserID(c)
			if !ok {
				return
			}
			var in In
			if !shared.BindJSON(c, &in) {
				return
			}
			item, err := resource.Create(c.Request.Context(), userID, in)
			if err != nil {
				shared.RespondMappedError(c, err, shared.BackendErrorRules)
				return
			}
			response.Success(c, item)
		},
		Update: func(c *gin.Context) {
			userID, ok := shared.CurrentUserID(c)
			if !ok {
				return
			}
			id, ok := shared.ParamUint(c, "id")
			if !ok {
				return
			}
			var in In
			if !shared.BindJSON(c, &in) {
				return
			}
			item, err := resource.Update(c.Request.Context(), userID, id, in)
			if err != nil {
				shared.RespondMappedError(c, err, shared.BackendErrorRules)
				return
			}
			response.Success(c, item)
		},
		Delete: func(c *gin.Context) {
			userID, ok := shared.CurrentUserID(c)
			if !ok {
				return
			}
			id, ok := shared.ParamUint(c, "id")
			if !ok {
				return
			}
			if err := resource.Delete(c.Request.Context(), userID, id); err != nil {
				shared.RespondMappedError(c, err, shared.BackendErrorRules)
				return
			}
			response.Success(c, gin.H{"id": id})
		},
	}
}

// Users 用户管理
func (h *Handler) Users() ResourceRoutes { return resourceRoutes(h.AdminResourceService.Users) }

// Categories 分类管理
func (h *Handler) Categories() ResourceRoutes {
	return resourceRoutes(h.AdminResourceService.Categories)
}

// Products 商品管理
func (h *Handler) Products() ResourceRoutes { return resourceRoutes(h.AdminResourceService.Products) }

// PaymentMethods 支付方式管理
func (h *Handler) PaymentMethods() ResourceRoutes {
	return resourceRoutes(h.AdminResourceService.PaymentMethods)
}

// LicenseKeys 授权密钥管理
func (h *Handler) LicenseKeys() ResourceRoutes {
	return resourceRoutes(h.AdminResourceService.LicenseKeys)
}
