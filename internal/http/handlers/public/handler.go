package public

import "github.com/licence-store/internal/provider"

// Handler 前台接口处理器：目录浏览、购物车、账户与结算
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
