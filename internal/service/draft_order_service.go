package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/orderline"
	"github.com/licence-store/internal/queue"
	"github.com/licence-store/internal/storage"
	"github.com/licence-store/internal/telemetry"

	"github.com/google/uuid"
)

const draftApplyConcurrency = 4

// 草稿提交结果
const (
	DraftSubmitComplete = "complete"
	DraftSubmitQueued   = "queued"
	DraftSubmitPartial  = "partial"
)

// DraftView 草稿响应
type DraftView struct {
	ID    string           `json:"id"`
	Draft *orderline.Draft `json:"draft"`
}

// OpenDraftInput 打开草稿：ActionID 为空时新建，否则编辑已有单据
type OpenDraftInput struct {
	ActionID *uint  `json:"action_id"`
	Type     string `json:"type"`
}

// DraftHeaderInput 单据头修改，nil 字段保持不变
type DraftHeaderInput struct {
	Type             *string `json:"type"`
	ClientID         *uint   `json:"client_id"`
	SellerID         *uint   `json:"seller_id"`
	PaymentMethodID  *uint   `json:"payment_method_id"`
	PaymentReference *string `json:"payment_reference"`
	Comment          *string `json:"comment"`
	Paid             *bool   `json:"paid"`
	Delivered        *bool   `json:"delivered"`
}

// FailedLineOp 未能执行也未能入队的明细操作
type FailedLineOp struct {
	Op    orderline.Op `json:"op"`
	Error string       `json:"error"`
}

// SubmitResult 草稿提交结果
type SubmitResult struct {
	Action  *models.Action `json:"action"`
	Status  string         `json:"status"`
	Deleted int            `json:"deleted"`
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Queued  int            `json:"queued"`
	Failed  []FailedLineOp `json:"failed,omitempty"`
	DraftID string         `json:"draft_id,omitempty"`
}

// DraftOrderService 后台草稿订单服务，草稿保存在 draft:{uuid}
type DraftOrderService struct {
	store   storage.Store
	backend *backend.Client
	auth    *AuthService
	catalog *CatalogService
	queue   *queue.Client
	metrics *telemetry.Metrics
	locks   stripedLocks
}

// NewDraftOrderService 创建草稿订单服务
func NewDraftOrderService(st storage.Store, client *backend.Client, auth *AuthService, catalogService *CatalogService, queueClient *queue.Client, metrics *telemetry.Metrics) *DraftOrderService {
	return &DraftOrderService{
		store:   storage.NewScoped(st, constants.StorageScopeDraft),
		backend: client,
		auth:    auth,
		catalog: catalogService,
		queue:   queueClient,
		metrics: metrics,
	}
}

// Open 新建草稿或载入已有单据及其明细
func (s *DraftOrderService) Open(ctx context.Context, userID uint, input OpenDraftInput) (*DraftView, error) {
	var draft *orderline.Draft
	if input.ActionID == nil {
		actionType := strings.TrimSpace(input.Type)
		if actionType == "" {
			actionType = constants.ActionTypePurchase
		}
		if !validActionType(actionType) {
			return nil, ErrDraftTypeInvalid
		}
		draft = orderline.NewDraft(actionType)
		seller := userID
		draft.SellerID = &seller
	} else {
		err := s.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
			action, err := s.backend.Orders().Get(ctx, auth, *input.ActionID)
			if err != nil {
				return err
			}
			lines, err := s.backend.ListOrderLines(ctx, auth, action.ID)
			if err != nil {
				return err
			}
			draft = orderline.EditDraft(*action, lines)
			return nil
		})
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrActionNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	if err := s.save(ctx, id, draft); err != nil {
		return nil, err
	}
	return &DraftView{ID: id, Draft: draft}, nil
}

// Get 读取草稿
func (s *DraftOrderService) Get(ctx context.Context, id string) (*DraftView, error) {
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DraftView{ID: id, Draft: draft}, nil
}

// UpdateHeader 修改单据头
func (s *DraftOrderService) UpdateHeader(ctx context.Context, id string, input DraftHeaderInput) (*DraftView, error) {
	return s.edit(ctx, id, func(draft *orderline.Draft) error {
		if input.Type != nil {
			actionType := strings.TrimSpace(*input.Type)
			if !validActionType(actionType) {
				return ErrDraftTypeInvalid
			}
			draft.Type = actionType
		}
		if input.ClientID != nil {
			draft.ClientID = *input.ClientID
		}
		if input.SellerID != nil {
			seller := *input.SellerID
			draft.SellerID = &seller
		}
		if input.PaymentMethodID != nil {
			draft.PaymentMethodID = *input.PaymentMethodID
		}
		if input.PaymentReference != nil {
			draft.PaymentReference = strings.TrimSpace(*input.PaymentReference)
		}
		if input.Comment != nil {
			draft.Comment = strings.TrimSpace(*input.Comment)
		}
		if input.Paid != nil {
			draft.Paid = *input.Paid
		}
		if input.Delivered != nil {
			draft.Delivered = *input.Delivered
		}
		return nil
	})
}

// AddLine 追加明细行，价格取目录中的单价
func (s *DraftOrderService) AddLine(ctx context.Context, id string, productID uint, quantity int) (*DraftView, error) {
	index, err := s.catalog.Index(ctx)
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, id, func(draft *orderline.Draft) error {
		_, err := draft.AddLine(index, productID, quantity)
		return err
	})
}

// RemoveLine 删除第 index 行
func (s *DraftOrderService) RemoveLine(ctx context.Context, id string, index int) (*DraftView, error) {
	return s.edit(ctx, id, func(draft *orderline.Draft) error {
		_, err := draft.RemoveLine(index)
		return err
	})
}

// Discard 丢弃草稿
func (s *DraftOrderService) Discard(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.store.Remove(ctx, id)
}

// Submit 保存单据头，对比已持久化明细生成计划并执行。
// 失败的明细操作尽量放入重试队列；无法入队时草稿按后端当前状态重新载入并保留。
func (s *DraftOrderService) Submit(ctx context.Context, userID uint, id string) (*SubmitResult, error) {
	unlock := s.lock(id)
	defer unlock()

	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.ClientID == 0 {
		return nil, ErrDraftClientMissing
	}

	result := &SubmitResult{}
	err = s.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		header := backend.ActionInputFrom(draft.Header())
		var (
			action    *models.Action
			persisted []models.ActionLine
			err       error
		)
		if draft.ID == nil {
			action, err = s.backend.Orders().Create(ctx, auth, header)
		} else {
			action, err = s.backend.Orders().Update(ctx, auth, *draft.ID, header)
			if err == nil {
				persisted, err = s.backend.ListOrderLines(ctx, auth, action.ID)
			}
		}
		if err != nil {
			return err
		}
		result.Action = action

		plan := orderline.Reconcile(draft, persisted)
		report := plan.Apply(ctx, action.ID, s.backend.LineWriter(auth), orderline.ApplyOptions{Concurrency: draftApplyConcurrency})
		result.Deleted, result.Created, result.Updated = report.Deleted, report.Created, report.Updated
		s.recordReport(ctx, report)

		for _, failed := range report.Failed {
			logger.Warnw("draft_submit_line_failed",
				"draft_id", id,
				"action_id", action.ID,
				"kind", failed.Op.Kind,
				"line_id", failed.Op.LineID,
				"error", failed.Err,
			)
			if err := s.queue.EnqueueOrderLineRetry(queue.OrderLineRetryPayload{UserID: userID, Op: failed.Op}); err != nil {
				result.Failed = append(result.Failed, FailedLineOp{Op: failed.Op, Error: failed.Err.Error()})
				continue
			}
			result.Queued++
		}

		if len(result.Failed) > 0 {
			fresh, err := s.backend.ListOrderLines(ctx, auth, action.ID)
			if err != nil {
				logger.Warnw("draft_submit_reload_failed", "draft_id", id, "error", err)
				fresh = nil
			}
			if fresh != nil {
				draft = orderline.EditDraft(*action, fresh)
			} else {
				actionID := action.ID
				draft.ID = &actionID
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordDraftSubmit(ctx, "error")
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrActionNotFound
		}
		return nil, err
	}

	switch {
	case len(result.Failed) > 0:
		result.Status = DraftSubmitPartial
		result.DraftID = id
		if err := s.save(ctx, id, draft); err != nil {
			logger.Warnw("draft_persist_failed", "draft_id", id, "error", err)
		}
	case result.Queued > 0:
		result.Status = DraftSubmitQueued
		_ = s.store.Remove(ctx, id)
	default:
		result.Status = DraftSubmitComplete
		_ = s.store.Remove(ctx, id)
	}
	s.metrics.RecordDraftSubmit(ctx, result.Status)
	logger.Infow("draft_submitted",
		"draft_id", id,
		"action_id", result.Action.ID,
		"status", result.Status,
		"queued", result.Queued,
	)
	return result, nil
}

func (s *DraftOrderService) recordReport(ctx context.Context, report orderline.Report) {
	for i := 0; i < report.Deleted; i++ {
		s.metrics.RecordLineOp(ctx, constants.LineOpDelete, nil)
	}
	for i := 0; i < report.Created; i++ {
		s.metrics.RecordLineOp(ctx, constants.LineOpCreate, nil)
	}
	for i := 0; i < report.Updated; i++ {
		s.metrics.RecordLineOp(ctx, constants.LineOpUpdate, nil)
	}
	for _, failed := range report.Failed {
		s.metrics.RecordLineOp(ctx, failed.Op.Kind, failed.Err)
	}
}

func (s *DraftOrderService) edit(ctx context.Context, id string, fn func(draft *orderline.Draft) error) (*DraftView, error) {
	unlock := s.lock(id)
	defer unlock()

	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(draft); err != nil {
		return nil, err
	}
	if err := s.save(ctx, id, draft); err != nil {
		return nil, err
	}
	return &DraftView{ID: id, Draft: draft}, nil
}

// lock 串行化同一草稿的读改写
func (s *DraftOrderService) lock(id string) func() {
	mu := s.locks.lockFor(strings.TrimSpace(id))
	mu.Lock()
	return mu.Unlock
}

func (s *DraftOrderService) load(ctx context.Context, id string) (*orderline.Draft, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrDraftNotFound
	}
	raw, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDraftNotFound
	}
	var draft orderline.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDraftNotFound, err)
	}
	return &draft, nil
}

func (s *DraftOrderService) save(ctx context.Context, id string, draft *orderline.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, storage.Entry{Key: id, Value: payload})
}

func validActionType(actionType string) bool {
	return actionType == constants.ActionTypePurchase || actionType == constants.ActionTypeQuote
}
