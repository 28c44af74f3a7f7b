package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/licence-store/internal/authz"
	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/cache"
	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/queue"
	"github.com/licence-store/internal/repository"
	"github.com/licence-store/internal/service"
	"github.com/licence-store/internal/storage"
	"github.com/licence-store/internal/telemetry"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *telemetry.Metrics
	Backend     *backend.Client

	// 会话存储，按用途区分过期时间
	CartStore  storage.Store
	DraftStore storage.Store
	TokenStore storage.Store
	// EntryStores 数据库驱动下需要定期清理过期记录
	EntryStores []*storage.GormStore

	StorageEntryRepo repository.StorageEntryRepository

	// Services
	AuthzService         *authz.Service
	AuthService          *service.AuthService
	CatalogService       *service.CatalogService
	CartService          *service.CartService
	CheckoutService      *service.CheckoutService
	DraftOrderService    *service.DraftOrderService
	SalesStatsService    *service.SalesStatsService
	AdminResourceService *service.AdminResourceService

	telemetryShutdown telemetry.ShutdownFunc
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	metrics, shutdown, err := telemetry.Init(context.Background(), cfg.Telemetry)
	if err != nil {
		logger.Warnw("provider_init_telemetry_failed", "error", err)
		metrics, shutdown = telemetry.Noop(), func(context.Context) error { return nil }
	}

	client, err := backend.NewClient(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("init backend client: %w", err)
	}

	c := &Container{
		Config:            cfg,
		QueueClient:       queueClient,
		Metrics:           metrics,
		Backend:           client,
		telemetryShutdown: shutdown,
	}

	if err := c.initStores(); err != nil {
		return nil, err
	}
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close 释放容器持有的外部资源
func (c *Container) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if c.telemetryShutdown != nil {
		if err := c.telemetryShutdown(ctx); err != nil {
			logger.Warnw("provider_shutdown_telemetry_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

func (c *Container) initStores() error {
	cartTTL := time.Duration(c.Config.Cart.TTLHours) * time.Hour
	draftTTL := time.Duration(c.Config.Draft.TTLMinutes) * time.Minute
	tokenTTL := time.Duration(c.Config.JWT.ExpireHours) * time.Hour

	driver := strings.ToLower(strings.TrimSpace(c.Config.Cart.StorageDriver))
	if driver == constants.StorageDriverRedis && !cache.Enabled() {
		logger.Warnw("provider_storage_redis_unavailable", "fallback", constants.StorageDriverMemory)
		driver = constants.StorageDriverMemory
	}

	switch driver {
	case constants.StorageDriverMemory:
		// 单进程部署，所有用途共享一个内存表
		shared := storage.NewMemoryStore()
		c.CartStore, c.DraftStore, c.TokenStore = shared, shared, shared
	case constants.StorageDriverRedis:
		prefix := cache.BuildKey("session")
		c.CartStore = storage.NewRedisStore(cache.Client(), prefix, cartTTL)
		c.DraftStore = storage.NewRedisStore(cache.Client(), prefix, draftTTL)
		c.TokenStore = storage.NewRedisStore(cache.Client(), prefix, tokenTTL)
	case constants.StorageDriverDatabase:
		if models.DB == nil {
			return fmt.Errorf("storage driver %q requires database", driver)
		}
		c.StorageEntryRepo = repository.NewStorageEntryRepository(models.DB)
		cartStore := storage.NewGormStore(c.StorageEntryRepo, cartTTL)
		draftStore := storage.NewGormStore(c.StorageEntryRepo, draftTTL)
		tokenStore := storage.NewGormStore(c.StorageEntryRepo, tokenTTL)
		c.CartStore, c.DraftStore, c.TokenStore = cartStore, draftStore, tokenStore
		c.EntryStores = []*storage.GormStore{cartStore, draftStore, tokenStore}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Config.Cart.StorageDriver)
	}
	logger.Infow("provider_storage_ready", "driver", driver)
	return nil
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	c.AuthService = service.NewAuthService(c.Config, c.Backend, service.NewTokenStore(c.TokenStore))
	c.CatalogService = service.NewCatalogService(c.Backend, c.Config.Catalog, c.Metrics)
	c.CartService = service.NewCartService(c.CartStore, c.CatalogService, c.Config.Cart, c.Metrics)
	c.CheckoutService = service.NewCheckoutService(c.Backend, c.AuthService, c.CartService, c.CatalogService, c.Metrics)
	c.DraftOrderService = service.NewDraftOrderService(c.DraftStore, c.Backend, c.AuthService, c.CatalogService, c.QueueClient, c.Metrics)
	c.SalesStatsService = service.NewSalesStatsService(c.Backend, c.AuthService)
	c.AdminResourceService = service.NewAdminResourceService(c.Backend, c.AuthService, c.CatalogService, c.QueueClient)
	return nil
}
