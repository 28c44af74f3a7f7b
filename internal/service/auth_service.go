package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims 网关会话令牌声明
type SessionClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenStore 按用户保存后端令牌（auth:{user_id}）
type TokenStore struct {
	store storage.Store
}

// NewTokenStore 创建令牌存储
func NewTokenStore(st storage.Store) *TokenStore {
	return &TokenStore{store: storage.NewScoped(st, constants.StorageScopeAuth)}
}

// Save 保存令牌
func (t *TokenStore) Save(ctx context.Context, userID uint, pair backend.TokenPair) error {
	payload, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	return t.store.Set(ctx, storage.Entry{Key: userKey(userID), Value: payload})
}

// Load 读取令牌，不存在时返回 ErrSessionExpired
func (t *TokenStore) Load(ctx context.Context, userID uint) (*backend.Auth, error) {
	raw, ok, err := t.store.Get(ctx, userKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionExpired
	}
	var pair backend.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil || pair.Access == "" {
		return nil, ErrSessionExpired
	}
	return backend.NewAuth(pair), nil
}

// Delete 删除令牌
func (t *TokenStore) Delete(ctx context.Context, userID uint) error {
	return t.store.Remove(ctx, userKey(userID))
}

func userKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// AuthService 登录、注册与会话服务
type AuthService struct {
	cfg     *config.Config
	backend *backend.Client
	tokens  *TokenStore
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, client *backend.Client, tokens *TokenStore) *AuthService {
	return &AuthService{cfg: cfg, backend: client, tokens: tokens}
}

// LoginResult 登录结果
type LoginResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Login 用后端账号登录并签发网关会话令牌
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	pair, err := s.backend.Login(ctx, backend.LoginRequest{
		Username: strings.TrimSpace(username),
		Password: password,
	})
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrRejected) || errors.Is(err, backend.ErrInvalidRequest) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	auth := backend.NewAuth(*pair)
	user, err := s.backend.Me(ctx, auth)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := s.tokens.Save(ctx, user.ID, auth.Pair()); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	logger.Infow("auth_login", "user_id", user.ID, "role", user.Role)
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Signup 注册新客户账号
func (s *AuthService) Signup(ctx context.Context, req backend.SignupRequest) (*models.User, error) {
	return s.backend.Signup(ctx, req)
}

// RequestPasswordReset 发起找回密码；邮箱未注册时返回 ErrAccountNotFound
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	err := s.backend.RequestPasswordReset(ctx, backend.PasswordResetRequest{Email: strings.TrimSpace(email)})
	if errors.Is(err, backend.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err == nil {
		logger.Infow("auth_password_reset_requested")
	}
	return err
}

// Logout 清除后端令牌
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.tokens.Delete(ctx, userID)
}

// WithSession 取出用户的后端令牌执行 fn，令牌被刷新时写回存储
func (s *AuthService) WithSession(ctx context.Context, userID uint, fn func(auth *backend.Auth) error) error {
	auth, err := s.tokens.Load(ctx, userID)
	if err != nil {
		return err
	}
	callErr := fn(auth)
	if auth.Refreshed() {
		if err := s.tokens.Save(ctx, userID, auth.Pair()); err != nil {
			logger.Warnw("auth_token_persist_failed", "user_id", userID, "error", err)
		}
	}
	if errors.Is(callErr, backend.ErrUnauthorized) {
		_ = s.tokens.Delete(ctx, userID)
		return fmt.Errorf("%w: %w", ErrSessionExpired, callErr)
	}
	return callErr
}

// Profile 当前用户资料
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user *models.User
	err := s.WithSession(ctx, userID, func(auth *backend.Auth) error {
		var err error
		user, err = s.backend.Me(ctx, auth)
		return err
	})
	return user, err
}

// UpdateProfile 更新当前用户资料
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, input backend.ProfileInput) (*models.User, error) {
	var user *models.User
	err := s.WithSession(ctx, userID, func(auth *backend.Auth) error {
		var err error
		user, err = s.backend.UpdateMe(ctx, auth, input)
		return err
	})
	return user, err
}

// GenerateJWT 生成网关会话令牌
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userKey(user.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析网关会话令牌
func (s *AuthService) ParseJWT(tokenString string) (*SessionClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
