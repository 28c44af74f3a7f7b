package authz

import (
	"github.com/licence-store/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 预置角色矩阵：vendeur 只读目录并管理销售单，admin 拥有全部后台权限
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleSeller,
			Policies: []Policy{
				{Object: "/admin/stats", Action: "GET"},
				{Object: "/admin/users", Action: "GET"},
				{Object: "/admin/users/:id", Action: "GET"},
				{Object: "/admin/categories", Action: "GET"},
				{Object: "/admin/categories/:id", Action: "GET"},
				{Object: "/admin/products", Action: "GET"},
				{Object: "/admin/products/:id", Action: "GET"},
				{Object: "/admin/payment-methods", Action: "GET"},
				{Object: "/admin/payment-methods/:id", Action: "GET"},
				{Object: "/admin/keys", Action: "GET"},
				{Object: "/admin/keys/:id", Action: "GET"},
				{Object: "/admin/actions", Action: "GET"},
				{Object: "/admin/actions/:id", Action: "*"},
				{Object: "/admin/actions/:id/approve", Action: "POST"},
				{Object: "/admin/drafts", Action: "POST"},
				{Object: "/admin/drafts/:id", Action: "*"},
				{Object: "/admin/drafts/:id/lines", Action: "POST"},
				{Object: "/admin/drafts/:id/lines/:index", Action: "DELETE"},
				{Object: "/admin/drafts/:id/submit", Action: "POST"},
			},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{constants.RoleSeller},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 写入预置角色与默认策略，重复执行不产生重复规则
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	for _, seed := range BuiltinRoleSeeds() {
		for _, parent := range seed.Inherits {
			if err := s.InheritRole(seed.Role, parent); err != nil {
				return err
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(seed.Role, policy.Object, policy.Action); err != nil {
				return err
			}
		}
	}
	return nil
}
