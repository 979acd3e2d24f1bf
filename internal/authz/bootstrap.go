package authz

import (
	"fmt"
	"strings"
)

// 预置角色名称
const (
	RolePricingViewer  = "pricing_viewer"
	RolePricingManager = "pricing_manager"
	RoleAuthzAdmin     = "authz_admin"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RolePricingViewer,
			Policies: []Policy{
				{Object: "/admin/margin-rules", Action: "GET"},
				{Object: "/admin/margin-rules/:id", Action: "GET"},
				{Object: "/admin/margin-rules/audit-logs", Action: "GET"},
				{Object: "/admin/margin-rules/simulate", Action: "POST"},
				{Object: "/admin/locations/*", Action: "GET"},
				{Object: "/admin/authz/me", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     RolePricingManager,
			Inherits: []string{RolePricingViewer},
			Policies: []Policy{
				{Object: "/admin/margin-rules", Action: "POST"},
				{Object: "/admin/margin-rules/:id", Action: "*"},
				{Object: "/admin/margin-rules/:id/toggle", Action: "PATCH"},
			},
			Immutable: true,
		},
		{
			Role:     RoleAuthzAdmin,
			Inherits: []string{RolePricingViewer},
			Policies: []Policy{
				{Object: "/admin/authz/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// IsBuiltinRole 判断是否为不可删除的预置角色
func IsBuiltinRole(role string) bool {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range BuiltinRoleSeeds() {
		if !seed.Immutable {
			continue
		}
		if strings.EqualFold(rolePrefix+seed.Role, normalized) {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 初始化预置角色、继承关系与默认策略（幂等）
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", seed.Role, err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link %s to %s: %w", role, parentRole, err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("seed policy of %s: %w", role, err)
			}
		}
	}
	return nil
}
