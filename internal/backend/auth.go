package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/licence-store/internal/models"
)

type accessResponse struct {
	Access string `json:"access"`
}

// Login 用户名密码换取令牌
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	var pair TokenPair
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/token", body: req, out: &pair}); err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrResponseInvalid)
	}
	return &pair, nil
}

// Signup 注册新用户
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/signup", body: req, out: &user}); err != nil {
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset 发起密码重置，邮箱未注册时后端返回 404
func (c *Client) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/auth/password-reset", body: req})
}

// Me 当前用户资料
func (c *Client) Me(ctx context.Context, auth *Auth) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/users/me", out: &user, auth: auth}); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe 更新当前用户资料
func (c *Client) UpdateMe(ctx context.Context, auth *Auth, req ProfileInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, call{method: http.MethodPut, path: "/users/me", body: req, out: &user, auth: auth}); err != nil {
		return nil, err
	}
	return &user, nil
}

// refresh 刷新访问令牌，不走 401 重放逻辑
func (c *Client) refresh(ctx context.Context, auth *Auth) error {
	req := RefreshRequest{Refresh: auth.refreshToken()}
	if err := req.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: marshal refresh request failed", ErrInvalidRequest)
	}
	body, err := c.send(ctx, call{method: http.MethodPost, path: "/auth/refresh"}, payload)
	if err != nil {
		return err
	}
	var out accessResponse
	if err := decodeInto(body, &out); err != nil {
		return err
	}
	if out.Access == "" {
		return fmt.Errorf("%w: empty access token", ErrResponseInvalid)
	}
	auth.update(out.Access)
	return nil
}
