package admin

import "github.com/licence-store/internal/provider"

// Handler 后台接口处理器，路由由会话令牌与角色策略保护
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
