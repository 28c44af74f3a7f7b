package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/licence-store/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestBuiltinRoleMatrix(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	cases := []struct {
		role  string
		obj   string
		act   string
		allow bool
	}{
		{constants.RoleAdmin, "/api/v1/admin/users/3", "DELETE", true},
		{constants.RoleAdmin, "/api/v1/admin/keys", "POST", true},
		{constants.RoleSeller, "/api/v1/admin/products", "get", true},
		{constants.RoleSeller, "/api/v1/admin/products/5", "PUT", false},
		{constants.RoleSeller, "/api/v1/admin/drafts/abc/lines/0", "DELETE", true},
		{constants.RoleSeller, "/api/v1/admin/drafts/abc/submit", "POST", true},
		{constants.RoleSeller, "/api/v1/admin/actions/8/approve", "POST", true},
		{constants.RoleSeller, "/api/v1/admin/users", "POST", false},
		{constants.RoleClient, "/api/v1/admin/stats", "GET", false},
		{constants.RoleClient, "/api/v1/admin/products", "GET", false},
	}
	for _, item := range cases {
		allow, err := svc.EnforceRole(item.role, item.obj, item.act)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", item.role, item.act, item.obj, err)
		}
		if allow != item.allow {
			t.Fatalf("enforce %s %s %s want %v got %v", item.role, item.act, item.obj, item.allow, allow)
		}
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	before, err := svc.ListRolePolicies(constants.RoleSeller)
	if err != nil {
		t.Fatalf("list policies failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	after, err := svc.ListRolePolicies(constants.RoleSeller)
	if err != nil {
		t.Fatalf("list policies failed: %v", err)
	}
	if len(before) != len(after) || len(after) == 0 {
		t.Fatalf("want stable policy count got before=%d after=%d", len(before), len(after))
	}
}

func TestGrantAndRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy(constants.RoleSeller, "/admin/keys", "POST"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	allow, err := svc.EnforceRole(constants.RoleSeller, "/admin/keys", "POST")
	if err != nil || !allow {
		t.Fatalf("want allow after grant got allow=%v err=%v", allow, err)
	}
	if err := svc.RevokeRolePolicy(constants.RoleSeller, "/admin/keys", "POST"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	allow, err = svc.EnforceRole(constants.RoleSeller, "/admin/keys", "POST")
	if err != nil || allow {
		t.Fatalf("want deny after revoke got allow=%v err=%v", allow, err)
	}
}

func TestEnforceRoleRejectsBlankRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if _, err := svc.EnforceRole("  ", "/admin/stats", "GET"); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("want ErrRoleRequired got %v", err)
	}
	var nilSvc *Service
	if _, err := nilSvc.EnforceRole(constants.RoleAdmin, "/admin/stats", "GET"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable got %v", err)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/actions/:id", want: "/admin/actions/:id"},
		{in: "/admin/actions/:id", want: "/admin/actions/:id"},
		{in: "admin/actions", want: "/admin/actions"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	got, err := NormalizeRole(" Vendeur ")
	if err != nil {
		t.Fatalf("normalize role failed: %v", err)
	}
	if got != "role:vendeur" {
		t.Fatalf("want role:vendeur got %s", got)
	}
}
