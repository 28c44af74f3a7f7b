package worker

import (
	"context"
	"errors"
	"time"

	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/queue"
	"github.com/licence-store/internal/storage"

	"github.com/hibiken/asynq"
)

const storagePurgeInterval = 10 * time.Minute

// Service 后台任务服务：asynq 消费者、目录定时刷新与过期会话清理
type Service struct {
	server          *asynq.Server
	mux             *asynq.ServeMux
	consumer        *Consumer
	refreshInterval time.Duration
	purgers         []*storage.GormStore
}

// NewService 创建后台任务服务；队列关闭时只运行定时任务
func NewService(cfg *config.Config, consumer *Consumer, purgers ...*storage.GormStore) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	s := &Service{
		consumer:        consumer,
		refreshInterval: time.Duration(cfg.Catalog.RefreshIntervalSeconds) * time.Second,
		purgers:         purgers,
	}
	if cfg.Queue.Enabled {
		opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
		serverCfg.Logger = newAsynqLogger()
		s.server = asynq.NewServer(opt, serverCfg)
		s.mux = asynq.NewServeMux()
		consumer.Register(s.mux)
	} else {
		logger.Warnw("worker_queue_disabled", "fallback", "periodic_jobs_only")
	}
	return s, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动并阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}
	if s.server != nil {
		if err := s.server.Start(s.mux); err != nil {
			return err
		}
	}
	if s.refreshInterval > 0 && s.consumer.CatalogService != nil {
		go runEvery(ctx, s.refreshInterval, s.refreshCatalog)
	}
	if len(s.purgers) > 0 {
		go runEvery(ctx, storagePurgeInterval, s.purgeExpired)
	}
	<-ctx.Done()
	return nil
}

// Stop 停止消费，等待进行中的任务
func (s *Service) Stop(context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

func (s *Service) refreshCatalog(ctx context.Context) {
	if _, err := s.consumer.CatalogService.Refresh(ctx); err != nil {
		logger.Warnw("worker_catalog_periodic_refresh_failed", "error", err)
	}
}

func (s *Service) purgeExpired(ctx context.Context) {
	var total int64
	for _, store := range s.purgers {
		n, err := store.PurgeExpired(ctx)
		if err != nil {
			logger.Warnw("worker_storage_purge_failed", "error", err)
			continue
		}
		total += n
	}
	if total > 0 {
		logger.Infow("worker_storage_purged", "entries", total)
	}
}

// runEvery 立即执行一次，之后按间隔执行直到 ctx 结束
func runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	fn(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
