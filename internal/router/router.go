package router

import (
	"sort"
	"strings"

	"github.com/licence-store/internal/authz"
	"github.com/licence-store/internal/cache"
	"github.com/licence-store/internal/config"
	adminhandlers "github.com/licence-store/internal/http/handlers/admin"
	publichandlers "github.com/licence-store/internal/http/handlers/public"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	loginRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate:login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	resetRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate:password_reset"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.password_reset_too_many",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(MetricsMiddleware(c.Metrics))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/categories", publicHandler.ListCategories)
			public.GET("/payment-methods", publicHandler.ListPaymentMethods)
		}

		cart := apiV1.Group("/cart", CartSessionMiddleware(cfg.Cart))
		{
			cart.GET("", publicHandler.GetCart)
			cart.DELETE("", publicHandler.ClearCart)
			cart.POST("/items", publicHandler.AddCartItem)
			cart.DELETE("/items/:product_id", publicHandler.RemoveCartItem)
			cart.POST("/items/:product_id/increment", publicHandler.IncrementCartItem)
			cart.POST("/items/:product_id/decrement", publicHandler.DecrementCartItem)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("username")), publicHandler.Login)
			auth.POST("/signup", publicHandler.Signup)
			auth.POST("/password-reset", RateLimitMiddleware(cache.Client(), resetRule, KeyByIPAndJSONField("email")), publicHandler.RequestPasswordReset)
			auth.POST("/logout", SessionAuthMiddleware(c.AuthService), publicHandler.Logout)
		}

		user := apiV1.Group("", SessionAuthMiddleware(c.AuthService))
		{
			user.GET("/me", publicHandler.GetMe)
			user.PUT("/me", publicHandler.UpdateMe)
			user.POST("/checkout", CartSessionMiddleware(cfg.Cart), publicHandler.Checkout)
		}

		admin := apiV1.Group("/admin", SessionAuthMiddleware(c.AuthService), RBACMiddleware(c.AuthzService))
		{
			admin.GET("/stats", adminHandler.GetStats)

			registerResource(admin, "/users", adminHandler.Users())
			registerResource(admin, "/categories", adminHandler.Categories())
			registerResource(admin, "/products", adminHandler.Products())
			registerResource(admin, "/payment-methods", adminHandler.PaymentMethods())
			registerResource(admin, "/keys", adminHandler.LicenseKeys())

			admin.GET("/actions", adminHandler.ListActions)
			admin.GET("/actions/:id", adminHandler.GetAction)
			admin.DELETE("/actions/:id", adminHandler.DeleteAction)
			admin.POST("/actions/:id/approve", adminHandler.ApproveAction)

			admin.GET("/failed-emails", adminHandler.ListFailedEmails)
			admin.GET("/failed-emails/:id", adminHandler.GetFailedEmail)
			admin.PATCH("/failed-emails/:id", adminHandler.ResolveFailedEmail)
			admin.DELETE("/failed-emails/:id", adminHandler.DeleteFailedEmail)
			admin.POST("/failed-emails/:id/retry", adminHandler.RetryFailedEmail)

			admin.POST("/drafts", adminHandler.OpenDraft)
			admin.GET("/drafts/:id", adminHandler.GetDraft)
			admin.PATCH("/drafts/:id", adminHandler.UpdateDraft)
			admin.DELETE("/drafts/:id", adminHandler.DiscardDraft)
			admin.POST("/drafts/:id/lines", adminHandler.AddDraftLine)
			admin.DELETE("/drafts/:id/lines/:index", adminHandler.RemoveDraftLine)
			admin.POST("/drafts/:id/submit", adminHandler.SubmitDraft)

			admin.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantPolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokePolicy)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func registerResource(group *gin.RouterGroup, path string, routes adminhandlers.ResourceRoutes) {
	group.GET(path, routes.List)
	group.POST(path, routes.Create)
	group.GET(path+"/:id", routes.Get)
	group.PUT(path+"/:id", routes.Update)
	group.DELETE(path+"/:id", routes.Delete)
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 列出全部后台路由，供授予策略时选择
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))
	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module != items[j].Module {
			return items[i].Module < items[j].Module
		}
		if items[i].Object != items[j].Object {
			return items[i].Object < items[j].Object
		}
		return items[i].Method < items[j].Method
	})
	return items
}

// deriveAdminPermissionModule /admin/drafts/:id/lines -> drafts
func deriveAdminPermissionModule(object string) string {
	segments := strings.Split(strings.Trim(strings.TrimSpace(object), "/"), "/")
	switch {
	case len(segments) == 0 || segments[0] == "":
		return "system"
	case segments[0] != "admin" || len(segments) == 1:
		return segments[0]
	default:
		return segments[1]
	}
}
