package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/catalog"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/queue"
)

// ResourceQuery 后台列表查询
type ResourceQuery struct {
	Query    string
	Type     string
	Page     int
	PageSize int
}

func (q ResourceQuery) values() url.Values {
	values := url.Values{}
	if t := strings.TrimSpace(q.Type); t != "" {
		values.Set("type", t)
	}
	return values
}

// AdminResource 后台资源的列表搜索与增删改
type AdminResource[T any, In backend.Validatable] struct {
	remote     backend.Resource[T, In]
	auth       *AuthService
	fields     []catalog.Field[T]
	afterWrite func(ctx context.Context)
}

// List 拉取全部记录后在本地搜索并分页
func (r AdminResource[T, In]) List(ctx context.Context, userID uint, q ResourceQuery) (catalog.Page[T], error) {
	return r.ListWhere(ctx, userID, q, nil)
}

// ListWhere 同 List，keep 非空时先按条件过滤再搜索
func (r AdminResource[T, In]) ListWhere(ctx context.Context, userID uint, q ResourceQuery, keep func(T) bool) (catalog.Page[T], error) {
	var items []T
	err := r.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		var err error
		items, err = r.remote.List(ctx, auth, q.values())
		return err
	})
	if err != nil {
		return catalog.Page[T]{}, err
	}
	if keep != nil {
		kept := items[:0]
		for _, item := range items {
			if keep(item) {
				kept = append(kept, item)
			}
		}
		items = kept
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	return catalog.Paginate(catalog.Filter(items, q.Query, r.fields...), q.Page, pageSize), nil
}

// Get 详情
func (r AdminResource[T, In]) Get(ctx context.Context, userID uint, id uint) (*T, error) {
	var item *T
	err := r.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		var err error
		item, err = r.remote.Get(ctx, auth, id)
		return err
	})
	return item, err
}

// Create 创建
func (r AdminResource[T, In]) Create(ctx context.Context, userID uint, in In) (*T, error) {
	var item *T
	err := r.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		var err error
		item, err = r.remote.Create(ctx, auth, in)
		return err
	})
	if err == nil {
		r.written(ctx)
	}
	return item, err
}

// Update 更新
func (r AdminResource[T, In]) Update(ctx context.Context, userID uint, id uint, in In) (*T, error) {
	var item *T
	err := r.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		var err error
		item, err = r.remote.Update(ctx, auth, id, in)
		return err
	})
	if err == nil {
		r.written(ctx)
	}
	return item, err
}

// Delete 删除
func (r AdminResource[T, In]) Delete(ctx context.Context, userID uint, id uint) error {
	err := r.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		return r.remote.Delete(ctx, auth, id)
	})
	if err == nil {
		r.written(ctx)
	}
	return err
}

func (r AdminResource[T, In]) written(ctx context.Context) {
	if r.afterWrite != nil {
		r.afterWrite(ctx)
	}
}

// AdminResourceService 后台资源集合
type AdminResourceService struct {
	Users          AdminResource[models.User, backend.UserInput]
	Categories     AdminResource[models.Category, backend.CategoryInput]
	Products       AdminResource[models.Product, backend.ProductInput]
	PaymentMethods AdminResource[models.PaymentMethod, backend.PaymentMethodInput]
	LicenseKeys    AdminResource[models.LicenseKey, backend.LicenseKeyInput]
	Actions        AdminResource[models.Action, backend.ActionInput]
	FailedEmails   AdminResource[models.FailedEmail, backend.FailedEmailInput]

	backend *backend.Client
	auth    *AuthService
}

// NewAdminResourceService 创建后台资源服务；目录类资源写入后使缓存失效并触发异步刷新
func NewAdminResourceService(client *backend.Client, auth *AuthService, catalogService *CatalogService, queueClient *queue.Client) *AdminResourceService {
	refreshCatalog := func(ctx context.Context) {
		catalogService.Invalidate(ctx)
		err := queueClient.EnqueueCatalogRefresh(queue.CatalogRefreshPayload{Reason: "admin_write"}, 0)
		if err != nil && !errors.Is(err, queue.ErrQueueDisabled) {
			logger.Warnw("catalog_refresh_enqueue_failed", "error", err)
		}
	}
	return &AdminResourceService{
		Users:          AdminResource[models.User, backend.UserInput]{remote: client.Users(), auth: auth, fields: catalog.UserFields},
		Categories:     AdminResource[models.Category, backend.CategoryInput]{remote: client.Categories(), auth: auth, fields: catalog.CategoryFields, afterWrite: refreshCatalog},
		Products:       AdminResource[models.Product, backend.ProductInput]{remote: client.Products(), auth: auth, fields: catalog.ProductFields, afterWrite: refreshCatalog},
		PaymentMethods: AdminResource[models.PaymentMethod, backend.PaymentMethodInput]{remote: client.PaymentMethods(), auth: auth, fields: catalog.PaymentMethodFields, afterWrite: refreshCatalog},
		LicenseKeys:    AdminResource[models.LicenseKey, backend.LicenseKeyInput]{remote: client.LicenseKeys(), auth: auth, fields: catalog.LicenseKeyFields},
		Actions:        AdminResource[models.Action, backend.ActionInput]{remote: client.Orders(), auth: auth, fields: catalog.ActionFields},
		FailedEmails:   AdminResource[models.FailedEmail, backend.FailedEmailInput]{remote: client.FailedEmails(), auth: auth, fields: catalog.FailedEmailFields},
		backend:        client,
		auth:           auth,
	}
}

// ApproveAction 审批单据（报价转销售等由后端决定）
func (s *AdminResourceService) ApproveAction(ctx context.Context, userID uint, id uint) (*models.Action, error) {
	var action *models.Action
	err := s.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		var err error
		action, err = s.backend.ApproveOrder(ctx, auth, id)
		return err
	})
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrActionNotFound
	}
	return action, err
}

// ListFailedEmails 失败邮件列表，默认隐藏已处理记录
func (s *AdminResourceService) ListFailedEmails(ctx context.Context, userID uint, q ResourceQuery, includeResolved bool) (catalog.Page[models.FailedEmail], error) {
	var keep func(models.FailedEmail) bool
	if !includeResolved {
		keep = func(email models.FailedEmail) bool { return !email.Resolved }
	}
	return s.FailedEmails.ListWhere(ctx, userID, q, keep)
}

// ResolveFailedEmail 标记失败邮件已处理或重新打开
func (s *AdminResourceService) ResolveFailedEmail(ctx context.Context, userID uint, id uint, resolved bool) (*models.FailedEmail, error) {
	var email *models.FailedEmail
	err := s.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		var err error
		email, err = s.backend.ResolveFailedEmail(ctx, auth, id, resolved)
		return err
	})
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrFailedEmailNotFound
	}
	return email, err
}

// RetryFailedEmail 重新发送失败邮件
func (s *AdminResourceService) RetryFailedEmail(ctx context.Context, userID uint, id uint) error {
	err := s.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		return s.backend.RetryFailedEmail(ctx, auth, id)
	})
	if errors.Is(err, backend.ErrNotFound) {
		return ErrFailedEmailNotFound
	}
	if err == nil {
		logger.Infow("failed_email_retry_requested", "email_id", id, "user_id", userID)
	}
	return err
}
