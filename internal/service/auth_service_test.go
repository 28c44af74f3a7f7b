package service

import (
	"context"
	"errors"
	"testing"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/constants"
)

func TestLoginIssuesSessionTokenAndKeepsBackendTokens(t *testing.T) {
	env := newTestEnv(t)
	result := env.login(t)

	claims, err := env.auth.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.UserID != testUserID || claims.Role != constants.RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}

	auth, err := NewTokenStore(env.store).Load(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("load backend tokens failed: %v", err)
	}
	if pair := auth.Pair(); pair.Access != testAccessToken || pair.Refresh != "ref-1" {
		t.Fatalf("unexpected stored pair %+v", pair)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.auth.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
	if _, err := env.auth.Login(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("blank credentials want ErrInvalidCredentials got %v", err)
	}
}

func TestLogoutDropsBackendTokens(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	if err := env.auth.Logout(context.Background(), testUserID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	err := env.auth.WithSession(context.Background(), testUserID, func(*backend.Auth) error { return nil })
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("want ErrSessionExpired got %v", err)
	}
}

func TestParseJWTRejectsForeignSignature(t *testing.T) {
	env := newTestEnv(t)
	result := env.login(t)

	foreign := NewAuthService(&config.Config{JWT: config.JWTConfig{SecretKey: "other-secret", ExpireHours: 1}}, nil, nil)
	if _, err := foreign.ParseJWT(result.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid got %v", err)
	}
	if _, err := env.auth.ParseJWT("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid for garbage got %v", err)
	}
}

func TestProfileUsesStoredSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	user, err := env.auth.Profile(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("want alice got %s", user.Username)
	}
}

func TestRequestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	if err := env.auth.RequestPasswordReset(context.Background(), " alice@example.com "); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := env.auth.RequestPasswordReset(context.Background(), "ghost@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound got %v", err)
	}
	if err := env.auth.RequestPasswordReset(context.Background(), "ghost"); !errors.Is(err, backend.ErrInvalidRequest) {
		t.Fatalf("want ErrInvalidRequest got %v", err)
	}
}
