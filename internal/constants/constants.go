package constants

// 用户角色常量
const (
	RoleClient = "client"
	RoleSeller = "vendeur"
	RoleAdmin  = "admin"
)

// 业务单据类型常量
const (
	ActionTypePurchase = "achat"
	ActionTypeQuote    = "devis"
)

// 授权有效期常量
const (
	ValidityAll       = "all"
	ValidityOneYear   = "1 ans"
	ValidityTwoYears  = "2 ans"
	ValidityThreeYear = "3 ans"
	ValidityLifetime  = "a vie"
)

// 存储驱动常量
const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverDatabase = "database"
)

// 存储键前缀常量
const (
	StorageScopeCart  = "cart"
	StorageScopeDraft = "draft"
	StorageScopeAuth  = "auth"
)

// 订单行操作类型
const (
	LineOpCreate = "create"
	LineOpUpdate = "update"
	LineOpDelete = "delete"
)

// CartSessionHeader 购物车会话请求头
const CartSessionHeader = "X-Cart-Session"

// DefaultPageSize 前台商品列表每页数量
const DefaultPageSize = 8

// 队列与任务常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskOrderLineRetry = "order_line:retry"
	TaskCatalogRefresh = "catalog:refresh"
)

// gin 上下文键
const (
	ContextKeyRequestID   = "request_id"
	ContextKeyUserID      = "user_id"
	ContextKeyUsername    = "username"
	ContextKeyRole        = "role"
	ContextKeyCartSession = "cart_session"
)
