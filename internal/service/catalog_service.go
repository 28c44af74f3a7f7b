package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/cache"
	"github.com/licence-store/internal/catalog"
	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/orderline"
	"github.com/licence-store/internal/telemetry"

	"golang.org/x/sync/errgroup"
)

const catalogCacheKey = "catalog:snapshot"

// CatalogSnapshot 一次性拉取的公开目录
type CatalogSnapshot struct {
	Products       []models.Product       `json:"products"`
	Categories     []models.Category      `json:"categories"`
	PaymentMethods []models.PaymentMethod `json:"payment_methods"`
	RefreshedAt    time.Time              `json:"refreshed_at"`
}

// ProductQuery 商品搜索条件
type ProductQuery struct {
	Query      string
	Validity   string
	CategoryID uint
	Page       int
	PageSize   int
}

// CatalogService 商品目录服务：进程内快照 + Redis 缓存，过期后回源后端
type CatalogService struct {
	backend  *backend.Client
	ttl      time.Duration
	pageSize int
	metrics  *telemetry.Metrics
	now      func() time.Time

	mu       sync.RWMutex
	snapshot *CatalogSnapshot
}

// NewCatalogService 创建目录服务
func NewCatalogService(client *backend.Client, cfg config.CatalogConfig, metrics *telemetry.Metrics) *CatalogService {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	return &CatalogService{
		backend:  client,
		ttl:      ttl,
		pageSize: pageSize,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Snapshot 返回当前目录，依次尝试进程内快照、Redis 缓存与后端
func (s *CatalogService) Snapshot(ctx context.Context) (*CatalogSnapshot, error) {
	s.mu.RLock()
	current := s.snapshot
	s.mu.RUnlock()
	if current != nil && s.now().Sub(current.RefreshedAt) < s.ttl {
		return current, nil
	}

	var cached CatalogSnapshot
	hit, err := cache.GetJSON(ctx, catalogCacheKey, &cached)
	if err != nil {
		logger.Warnw("catalog_cache_read_failed", "error", err)
	}
	s.metrics.RecordCacheLookup(ctx, "catalog", hit)
	if hit && s.now().Sub(cached.RefreshedAt) < s.ttl {
		s.store(&cached)
		return &cached, nil
	}

	fresh, err := s.Refresh(ctx)
	if err != nil {
		if current != nil {
			logger.Warnw("catalog_refresh_failed_serving_stale", "error", err)
			return current, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Refresh 并发拉取商品、分类与支付方式并写入缓存
func (s *CatalogService) Refresh(ctx context.Context) (*CatalogSnapshot, error) {
	snapshot := &CatalogSnapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.backend.Products().List(gctx, nil, nil)
		snapshot.Products = items
		return err
	})
	g.Go(func() error {
		items, err := s.backend.Categories().List(gctx, nil, nil)
		snapshot.Categories = items
		return err
	})
	g.Go(func() error {
		items, err := s.backend.PaymentMethods().List(gctx, nil, nil)
		snapshot.PaymentMethods = items
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	snapshot.RefreshedAt = s.now()

	s.store(snapshot)
	if err := cache.SetJSON(ctx, catalogCacheKey, snapshot, s.ttl); err != nil {
		logger.Warnw("catalog_cache_write_failed", "error", err)
	}
	logger.Debugw("catalog_refreshed",
		"products", len(snapshot.Products),
		"categories", len(snapshot.Categories),
		"payment_methods", len(snapshot.PaymentMethods),
	)
	return snapshot, nil
}

// Invalidate 丢弃快照与缓存，下次读取时回源
func (s *CatalogService) Invalidate(ctx context.Context) {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
	if err := cache.Del(ctx, catalogCacheKey); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "error", err)
	}
}

func (s *CatalogService) store(snapshot *CatalogSnapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}

// SearchProducts 按关键字、有效期与分类过滤商品后分页
func (s *CatalogService) SearchProducts(ctx context.Context, q ProductQuery) (catalog.Page[models.Product], error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return catalog.Page[models.Product]{}, err
	}
	items := catalog.Filter(snapshot.Products, q.Query, catalog.ProductFields...)
	items = catalog.ByValidity(items, q.Validity)
	items = catalog.ByCategory(items, q.CategoryID)
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	return catalog.Paginate(items, q.Page, pageSize), nil
}

// SearchCategories 搜索分类
func (s *CatalogService) SearchCategories(ctx context.Context, query string) ([]models.Category, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(snapshot.Categories, query, catalog.CategoryFields...), nil
}

// SearchPaymentMethods 搜索支付方式
func (s *CatalogService) SearchPaymentMethods(ctx context.Context, query string) ([]models.PaymentMethod, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(snapshot.PaymentMethods, query, catalog.PaymentMethodFields...), nil
}

// Product 按 ID 查找商品
func (s *CatalogService) Product(ctx context.Context, id uint) (models.Product, bool, error) {
	index, err := s.Index(ctx)
	if err != nil {
		return models.Product{}, false, err
	}
	product, ok := index.Product(id)
	return product, ok, nil
}

// Index 商品索引，供草稿订单添加明细
func (s *CatalogService) Index(ctx context.Context) (orderline.ProductIndex, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return orderline.IndexProducts(snapshot.Products), nil
}

// PaymentMethod 按 ID 查找支付方式
func (s *CatalogService) PaymentMethod(ctx context.Context, id uint) (models.PaymentMethod, bool, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return models.PaymentMethod{}, false, err
	}
	for _, method := range snapshot.PaymentMethods {
		if method.ID == id {
			return method, true, nil
		}
	}
	return models.PaymentMethod{}, false, nil
}
