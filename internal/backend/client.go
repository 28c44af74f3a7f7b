// Package backend 是 REST 后端的 JSON 客户端：请求体先校验再发送，
// 401 时用刷新令牌换取新访问令牌并重放一次，幂等读取按指数退避重试。
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/logger"

	"github.com/cenkalti/backoff/v5"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRetryAttempts = 3
	defaultRetryInterval = 200 * time.Millisecond
	maxErrorBodyBytes    = 512
)

// Auth 用户在后端的令牌，刷新后原地更新
type Auth struct {
	mu           sync.Mutex
	AccessToken  string
	RefreshToken string
	refreshed    bool
}

// NewAuth 创建令牌持有者
func NewAuth(pair TokenPair) *Auth {
	return &Auth{AccessToken: pair.Access, RefreshToken: pair.Refresh}
}

// Refreshed 本次请求过程中是否刷新过访问令牌
func (a *Auth) Refreshed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshed
}

// Pair 当前令牌
func (a *Auth) Pair() TokenPair {
	a.mu.Lock()
	defer a.mu.Unlock()
	return TokenPair{Access: a.AccessToken, Refresh: a.RefreshToken}
}

func (a *Auth) access() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.AccessToken
}

func (a *Auth) refreshToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.RefreshToken
}

func (a *Auth) update(access string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.AccessToken = access
	a.refreshed = true
}

// Client 后端客户端
type Client struct {
	baseURL       string
	serviceToken  string
	httpClient    *http.Client
	timeout       time.Duration
	retryAttempts int
	retryInterval time.Duration
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 指定底层 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetryInterval 指定首次重试间隔
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryInterval = d
		}
	}
}

// NewClient 创建后端客户端
func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("%w: base_url is invalid", ErrConfigInvalid)
	}
	c := &Client{
		baseURL:       base,
		serviceToken:  strings.TrimSpace(cfg.ServiceToken),
		httpClient:    http.DefaultClient,
		timeout:       cfg.Timeout(),
		retryAttempts: cfg.RetryAttempts,
		retryInterval: defaultRetryInterval,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.retryAttempts <= 0 {
		c.retryAttempts = defaultRetryAttempts
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call 描述一次请求
type call struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	out    interface{}
	auth   *Auth
}

// do 发送请求；GET 按退避重试，401 时刷新令牌并重放一次
func (c *Client) do(ctx context.Context, req call) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if v, ok := req.body.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	var payload []byte
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%w: marshal request failed", ErrInvalidRequest)
		}
		payload = encoded
	}

	respBody, err := c.sendWithRefresh(ctx, req, payload)
	if err != nil {
		return err
	}
	if req.out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, req.out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrResponseInvalid, req.method, req.path, err)
	}
	return nil
}

func (c *Client) sendWithRefresh(ctx context.Context, req call, payload []byte) ([]byte, error) {
	body, err := c.sendMaybeRetry(ctx, req, payload)
	if err == nil || !errors.Is(err, ErrUnauthorized) || req.auth == nil || req.auth.refreshToken() == "" {
		return body, err
	}
	if refreshErr := c.refresh(ctx, req.auth); refreshErr != nil {
		logger.Warnw("backend_token_refresh_failed", "path", req.path, "error", refreshErr)
		return nil, err
	}
	return c.sendMaybeRetry(ctx, req, payload)
}

func (c *Client) sendMaybeRetry(ctx context.Context, req call, payload []byte) ([]byte, error) {
	if req.method != http.MethodGet {
		return c.send(ctx, req, payload)
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	attempt := 0
	return backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		body, err := c.send(ctx, req, payload)
		if err == nil {
			return body, nil
		}
		if !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		logger.Debugw("backend_get_retry", "path", req.path, "attempt", attempt, "error", err)
		return nil, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(c.retryAttempts)))
}

func (c *Client) send(ctx context.Context, req call, payload []byte) ([]byte, error) {
	ctx, cancel := c.withDefaultTimeout(ctx)
	defer cancel()

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(req.auth); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, req.method, req.path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method: req.method,
			Path:   req.path,
			Status: resp.StatusCode,
			Body:   truncate(string(respBody), maxErrorBodyBytes),
		}
	}
	return respBody, nil
}

func (c *Client) bearer(auth *Auth) string {
	if auth != nil {
		if token := auth.access(); token != "" {
			return token
		}
	}
	return c.serviceToken
}

func (c *Client) withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
