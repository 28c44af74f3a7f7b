package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/orderline"
	"github.com/licence-store/internal/provider"
	"github.com/licence-store/internal/queue"
	"github.com/licence-store/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register 注册任务处理函数
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderLineRetry, c.handleOrderLineRetry)
	mux.HandleFunc(queue.TaskCatalogRefresh, c.handleCatalogRefresh)
}

// handleOrderLineRetry 以提交人的后端令牌重放单条明细操作
func (c *Consumer) handleOrderLineRetry(ctx context.Context, task *asynq.Task) error {
	var payload queue.OrderLineRetryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_line_retry_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	op := payload.Op
	if payload.UserID == 0 || op.OrderID == 0 {
		logger.Warnw("worker_order_line_retry_skip_invalid_payload", "user_id", payload.UserID, "kind", op.Kind)
		return nil
	}

	err := c.AuthService.WithSession(ctx, payload.UserID, func(auth *backend.Auth) error {
		return op.Run(ctx, c.Backend.LineWriter(auth))
	})
	if op.Kind == constants.LineOpDelete && errors.Is(err, backend.ErrNotFound) {
		err = nil
	}
	c.Metrics.RecordLineOp(ctx, op.Kind, err)
	if err == nil {
		logger.Infow("worker_order_line_retry_done", "kind", op.Kind, "order_id", op.OrderID, "line_id", op.LineID)
		return nil
	}

	log := logger.SW("kind", op.Kind, "order_id", op.OrderID, "line_id", op.LineID, "user_id", payload.UserID)
	if permanentLineError(err) {
		log.Errorw("worker_order_line_retry_dropped", "error", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	log.Warnw("worker_order_line_retry_failed", "error", err)
	return err
}

// permanentLineError 重试也无法成功的错误
func permanentLineError(err error) bool {
	return errors.Is(err, service.ErrSessionExpired) ||
		errors.Is(err, orderline.ErrUnknownOp) ||
		errors.Is(err, backend.ErrInvalidRequest) ||
		errors.Is(err, backend.ErrRejected) ||
		errors.Is(err, backend.ErrForbidden) ||
		errors.Is(err, backend.ErrNotFound)
}

func (c *Consumer) handleCatalogRefresh(ctx context.Context, task *asynq.Task) error {
	var payload queue.CatalogRefreshPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Warnw("worker_catalog_refresh_unmarshal_failed", "error", err)
		}
	}
	snapshot, err := c.CatalogService.Refresh(ctx)
	if err != nil {
		logger.Warnw("worker_catalog_refresh_failed", "reason", payload.Reason, "error", err)
		return err
	}
	logger.Infow("worker_catalog_refreshed",
		"reason", payload.Reason,
		"products", len(snapshot.Products),
		"categories", len(snapshot.Categories),
	)
	return nil
}
