package authz

import (
	"errors"
	"fmt"
	"sort"
)

var errActionRequired = errors.New("action is required")

// EnsureRole 登记角色（幂等），返回规范化名称
func (s *Service) EnsureRole(role string) (string, error) {
	name, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if name == roleAnchor {
		return "", fmt.Errorf("role %q is reserved", role)
	}
	if err := s.ready(); err != nil {
		return "", err
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", name, roleAnchor); err != nil {
		return "", fmt.Errorf("register role %s: %w", name, err)
	}
	return name, nil
}

// ListRoles 列出全部角色（含被继承但未登记的角色）
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	links, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 0)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	seen := make(map[string]struct{})
	for _, link := range links {
		for _, value := range link[:min(len(link), 2)] {
			if isListedRole(value) {
				seen[value] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

// DeleteRole 删除角色、角色策略及所有指向它的授予关系
func (s *Service) DeleteRole(role string) error {
	name, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	if name == roleAnchor {
		return fmt.Errorf("role %q is reserved", role)
	}
	if IsBuiltinRole(name) {
		return ErrBuiltinRole
	}
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.enforcer.RemoveFilteredPolicy(0, name); err != nil {
		return fmt.Errorf("remove policies of %s: %w", name, err)
	}
	for _, field := range []int{0, 1} {
		if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", field, name); err != nil {
			return fmt.Errorf("unlink %s: %w", name, err)
		}
	}
	return nil
}

// GrantRolePolicy 为角色授予资源动作，角色不存在时自动登记
func (s *Service) GrantRolePolicy(role, object, action string) error {
	name, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	act := NormalizeAction(action)
	if act == "" {
		return errActionRequired
	}
	if _, err := s.enforcer.AddPolicy(name, NormalizeObject(object), act); err != nil {
		return fmt.Errorf("grant %s %s to %s: %w", act, object, name, err)
	}
	return nil
}

// RevokeRolePolicy 撤销角色的资源动作
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	name, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	act := NormalizeAction(action)
	if act == "" {
		return errActionRequired
	}
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.enforcer.RemovePolicy(name, NormalizeObject(object), act); err != nil {
		return fmt.Errorf("revoke %s %s from %s: %w", act, object, name, err)
	}
	return nil
}

// GetRolePolicies 角色直接持有的策略
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	name, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	return s.policiesOf(name)
}

// SetAdminRoles 覆盖管理员在本服务内的角色授予
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if adminID == 0 {
		return errors.New("admin id is required")
	}
	if err := s.ready(); err != nil {
		return err
	}
	subject := SubjectForAdmin(adminID)
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		name, err := s.EnsureRole(role)
		if err != nil {
			return err
		}
		names = append(names, name)
	}
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear roles of %s: %w", subject, err)
	}
	for _, name := range names {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, name); err != nil {
			return fmt.Errorf("assign %s to %s: %w", name, subject, err)
		}
	}
	return nil
}

// GetAdminRoles 管理员在本服务内被授予的角色
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if adminID == 0 {
		return nil, errors.New("admin id is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	roles, err := s.enforcer.GetRolesForUser(SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("get roles of admin %d: %w", adminID, err)
	}
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if isListedRole(role) {
			seen[role] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

// GetAdminPolicies 管理员直接持有与经角色获得的策略合集
func (s *Service) GetAdminPolicies(adminID uint) ([]Policy, error) {
	roles, err := s.GetAdminRoles(adminID)
	if err != nil {
		return nil, err
	}
	merged := make(map[Policy]struct{})
	for _, subject := range append([]string{SubjectForAdmin(adminID)}, roles...) {
		policies, err := s.policiesOf(subject)
		if err != nil {
			return nil, err
		}
		for _, policy := range policies {
			merged[policy] = struct{}{}
		}
	}
	result := make([]Policy, 0, len(merged))
	for policy := range merged {
		result = append(result, policy)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return a.Action < b.Action
	})
	return result, nil
}

func (s *Service) policiesOf(subject string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("get policies of %s: %w", subject, err)
	}
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: rule[0],
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
