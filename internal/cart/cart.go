// Package cart 实现会话购物车：按商品合并数量、重新计算总额，并在每次变更后持久化。
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/storage"
)

// 默认持久化键名，与浏览器端保持一致
const (
	DefaultLinesKey = "panier"
	DefaultTotalKey = "totalPanier"
)

// ErrMalformed 持久化数据无法解析或不满足约束
var ErrMalformed = errors.New("cart: malformed persisted state")

// Line 购物车行
type Line struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal 行小计
func (l Line) Subtotal() models.Money {
	return l.Product.UnitPrice.Times(l.Quantity)
}

// Options 购物车持久化键配置
type Options struct {
	LinesKey string
	TotalKey string
}

// Store 单个会话的购物车，非并发安全
type Store struct {
	storage  storage.Store
	linesKey string
	totalKey string
	lines    []Line
	total    models.Money
}

// New 创建空购物车
func New(st storage.Store, opts Options) *Store {
	if opts.LinesKey == "" {
		opts.LinesKey = DefaultLinesKey
	}
	if opts.TotalKey == "" {
		opts.TotalKey = DefaultTotalKey
	}
	return &Store{
		storage:  st,
		linesKey: opts.LinesKey,
		totalKey: opts.TotalKey,
		total:    models.ZeroMoney(),
	}
}

// AddItem 已存在则数量加一，否则追加数量为 1 的新行
func (s *Store) AddItem(ctx context.Context, product models.Product) {
	if idx := s.indexOf(product.ID); idx >= 0 {
		s.lines[idx].Quantity++
	} else {
		s.lines = append(s.lines, Line{Product: product, Quantity: 1})
	}
	s.commit(ctx)
}

// RemoveItem 删除商品对应的行，不存在时仅重新持久化
func (s *Store) RemoveItem(ctx context.Context, productID uint) {
	if idx := s.indexOf(productID); idx >= 0 {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	}
	s.commit(ctx)
}

// IncrementQuantity 数量加一
func (s *Store) IncrementQuantity(ctx context.Context, productID uint) {
	if idx := s.indexOf(productID); idx >= 0 {
		s.lines[idx].Quantity++
	}
	s.commit(ctx)
}

// DecrementQuantity 数量减一，数量为 1 时删除该行
func (s *Store) DecrementQuantity(ctx context.Context, productID uint) {
	if idx := s.indexOf(productID); idx >= 0 {
		if s.lines[idx].Quantity > 1 {
			s.lines[idx].Quantity--
		} else {
			s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
		}
	}
	s.commit(ctx)
}

// Clear 清空购物车并删除两个持久化键
func (s *Store) Clear(ctx context.Context) {
	s.lines = nil
	s.total = models.ZeroMoney()
	if s.storage == nil {
		return
	}
	if err := s.storage.Remove(ctx, s.linesKey, s.totalKey); err != nil {
		logger.Warnw("cart_clear_persist_failed", "error", err)
	}
}

// Restore 从存储恢复购物车；数据缺失或损坏时保持当前状态并返回 false
func (s *Store) Restore(ctx context.Context) bool {
	if s.storage == nil {
		return false
	}
	lines, err := s.load(ctx)
	if err != nil {
		if errors.Is(err, ErrMalformed) {
			logger.Warnw("cart_restore_malformed", "error", err)
		} else {
			logger.Warnw("cart_restore_failed", "error", err)
		}
		return false
	}
	if lines == nil {
		return false
	}
	s.lines = lines
	s.total = computeTotal(s.lines)
	return true
}

// Total 当前总额
func (s *Store) Total() models.Money {
	return s.total
}

// Lines 返回购物车行副本
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// ItemCount 商品总件数
func (s *Store) ItemCount() int {
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty 是否为空
func (s *Store) IsEmpty() bool {
	return len(s.lines) == 0
}

func (s *Store) indexOf(productID uint) int {
	for i, line := range s.lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

// commit 重新计算总额并将两个键一起写入
func (s *Store) commit(ctx context.Context) {
	s.total = computeTotal(s.lines)
	if s.storage == nil {
		return
	}
	lines := s.lines
	if lines == nil {
		lines = []Line{}
	}
	linesPayload, err := json.Marshal(lines)
	if err != nil {
		logger.Warnw("cart_encode_failed", "error", err)
		return
	}
	totalPayload, err := json.Marshal(s.total)
	if err != nil {
		logger.Warnw("cart_encode_failed", "error", err)
		return
	}
	if err := s.storage.Set(ctx,
		storage.Entry{Key: s.linesKey, Value: linesPayload},
		storage.Entry{Key: s.totalKey, Value: totalPayload},
	); err != nil {
		logger.Warnw("cart_persist_failed", "error", err, "lines", len(s.lines))
	}
}

// load 读取并校验持久化的行；键不存在时返回 nil, nil
func (s *Store) load(ctx context.Context) ([]Line, error) {
	raw, ok, err := s.storage.Get(ctx, s.linesKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var persisted []Line
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	rawTotal, ok, err := s.storage.Get(ctx, s.totalKey)
	if err != nil {
		return nil, err
	}
	if ok {
		var total models.Money
		if err := json.Unmarshal(rawTotal, &total); err != nil {
			return nil, fmt.Errorf("%w: total: %v", ErrMalformed, err)
		}
	}

	merged := make([]Line, 0, len(persisted))
	positions := make(map[uint]int, len(persisted))
	for _, line := range persisted {
		if line.Product.ID == 0 {
			return nil, fmt.Errorf("%w: missing product id", ErrMalformed)
		}
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %d quantity %d", ErrMalformed, line.Product.ID, line.Quantity)
		}
		if idx, seen := positions[line.Product.ID]; seen {
			merged[idx].Quantity += line.Quantity
			continue
		}
		positions[line.Product.ID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

func computeTotal(lines []Line) models.Money {
	total := models.ZeroMoney()
	for _, line := range lines {
		total = total.Plus(line.Subtotal())
	}
	return total
}
