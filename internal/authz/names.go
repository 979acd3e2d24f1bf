package authz

import (
	"errors"
	"fmt"
	"strings"
)

const (
	apiV1Prefix = "/api/v1"
	rolePrefix  = "role:"
	// roleAnchor 角色登记锚点，无策略的角色也能被列出
	roleAnchor = "role:__anchor__"
)

var errRoleRequired = errors.New("role is required")

// SubjectForAdmin 管理员主体标识
func SubjectForAdmin(adminID uint) string {
	return fmt.Sprintf("admin:%d", adminID)
}

// NormalizeRole 统一为 role: 前缀，空白替换为下划线
func NormalizeRole(role string) (string, error) {
	name := strings.ReplaceAll(strings.TrimSpace(role), " ", "_")
	name = strings.TrimPrefix(name, rolePrefix)
	if name == "" {
		return "", errRoleRequired
	}
	return rolePrefix + name, nil
}

// NormalizeObject 资源路径去掉 /api/v1 前缀
func NormalizeObject(object string) string {
	path := strings.TrimSpace(object)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	switch {
	case path == apiV1Prefix:
		return "/"
	case strings.HasPrefix(path, apiV1Prefix+"/"):
		return path[len(apiV1Prefix):]
	}
	return path
}

// NormalizeAction HTTP 方法大写
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}

func isListedRole(value string) bool {
	return strings.HasPrefix(value, rolePrefix) && value != roleAnchor
}
