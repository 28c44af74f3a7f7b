package service

import (
	"context"
	"strings"
	"sync"

	"github.com/licence-store/internal/cart"
	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/storage"
	"github.com/licence-store/internal/telemetry"

	"github.com/google/uuid"
)

// CartView 购物车响应
type CartView struct {
	SessionID string       `json:"session_id"`
	Lines     []cart.Line  `json:"lines"`
	Total     models.Money `json:"total"`
	ItemCount int          `json:"item_count"`
}

// CartService 会话购物车服务，每次请求从存储恢复再执行单个操作
type CartService struct {
	store   storage.Store
	catalog *CatalogService
	opts    cart.Options
	metrics *telemetry.Metrics
	locks   stripedLocks
}

// NewCartService 创建购物车服务
func NewCartService(st storage.Store, catalogService *CatalogService, cfg config.CartConfig, metrics *telemetry.Metrics) *CartService {
	return &CartService{
		store:   st,
		catalog: catalogService,
		opts:    cart.Options{LinesKey: cfg.LinesKey, TotalKey: cfg.TotalKey},
		metrics: metrics,
	}
}

// NormalizeSessionID 校验会话 ID，非法或为空时生成新的
func NormalizeSessionID(sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if parsed, err := uuid.Parse(sessionID); err == nil {
		return parsed.String()
	}
	return uuid.NewString()
}

// Open 打开会话购物车并从存储恢复
func (s *CartService) Open(ctx context.Context, sessionID string) (*cart.Store, string) {
	sessionID = NormalizeSessionID(sessionID)
	st := cart.New(storage.NewScoped(s.store, constants.StorageScopeCart, sessionID), s.opts)
	st.Restore(ctx)
	return st, sessionID
}

// View 查看购物车
func (s *CartService) View(ctx context.Context, sessionID string) CartView {
	st, sessionID := s.Open(ctx, sessionID)
	return viewOf(sessionID, st)
}

// AddItem 加入商品，商品以目录中的数据为准
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID uint) (CartView, error) {
	product, ok, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	if !ok {
		return CartView{}, ErrProductNotFound
	}
	return s.mutate(ctx, sessionID, "add", func(st *cart.Store) {
		st.AddItem(ctx, product)
	}), nil
}

// RemoveItem 移除商品行
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID uint) CartView {
	return s.mutate(ctx, sessionID, "remove", func(st *cart.Store) {
		st.RemoveItem(ctx, productID)
	})
}

// IncrementQuantity 数量加一
func (s *CartService) IncrementQuantity(ctx context.Context, sessionID string, productID uint) CartView {
	return s.mutate(ctx, sessionID, "increment", func(st *cart.Store) {
		st.IncrementQuantity(ctx, productID)
	})
}

// DecrementQuantity 数量减一，减到零时移除
func (s *CartService) DecrementQuantity(ctx context.Context, sessionID string, productID uint) CartView {
	return s.mutate(ctx, sessionID, "decrement", func(st *cart.Store) {
		st.DecrementQuantity(ctx, productID)
	})
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sessionID string) CartView {
	return s.mutate(ctx, sessionID, "clear", func(st *cart.Store) {
		st.Clear(ctx)
	})
}

func (s *CartService) mutate(ctx context.Context, sessionID, op string, fn func(st *cart.Store)) CartView {
	sessionID = NormalizeSessionID(sessionID)
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	st, sessionID := s.Open(ctx, sessionID)
	fn(st)
	s.metrics.RecordCartMutation(ctx, op)
	return viewOf(sessionID, st)
}

func (s *CartService) lockFor(sessionID string) *sync.Mutex {
	return s.locks.lockFor(sessionID)
}

func viewOf(sessionID string, st *cart.Store) CartView {
	return CartView{
		SessionID: sessionID,
		Lines:     st.Lines(),
		Total:     st.Total(),
		ItemCount: st.ItemCount(),
	}
}
