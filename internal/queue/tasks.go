package queue

import (
	"encoding/json"

	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/orderline"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderLineRetry 单条明细操作重试任务
	TaskOrderLineRetry = constants.TaskOrderLineRetry
	// TaskCatalogRefresh 商品目录刷新任务
	TaskCatalogRefresh = constants.TaskCatalogRefresh
)

// OrderLineRetryPayload 明细重试任务载荷，UserID 用于取回提交人的后端令牌
type OrderLineRetryPayload struct {
	UserID uint         `json:"user_id"`
	Op     orderline.Op `json:"op"`
}

// CatalogRefreshPayload 目录刷新任务载荷
type CatalogRefreshPayload struct {
	Reason string `json:"reason"`
}

// NewOrderLineRetryTask 创建明细重试任务
func NewOrderLineRetryTask(payload OrderLineRetryPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderLineRetry, body), nil
}

// NewCatalogRefreshTask 创建目录刷新任务
func NewCatalogRefreshTask(payload CatalogRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogRefresh, body), nil
}
