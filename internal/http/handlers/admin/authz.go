package admin

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gaithtours/margin-engine/internal/authz"
	handlershared "github.com/gaithtours/margin-engine/internal/http/handlers/shared"
	"github.com/gaithtours/margin-engine/internal/http/response"

	"github.com/gin-gonic/gin"
)

type createRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type rolePolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type adminRolesRequest struct {
	Roles []string `json:"roles"`
}

// authzMeView 当前管理员的权限快照
type authzMeView struct {
	AdminID    uint           `json:"admin_id"`
	Username   string         `json:"username"`
	IsSuper    bool           `json:"is_super"`
	Roles      []string       `json:"roles"`
	TokenRoles []string       `json:"token_roles"`
	Policies   []authz.Policy `json:"policies"`
}

var roleWriteErrorRules = []handlershared.MappedError{
	{Target: authz.ErrBuiltinRole, Code: response.CodeConflict, Key: "error.role_builtin"},
	{Target: authz.ErrUnavailable, Code: response.CodeServiceUnavailable, Key: "error.authz_failed"},
}

// authzChanged 权限变更留痕
func authzChanged(c *gin.Context, event string, kv ...interface{}) {
	fields := append([]interface{}{
		"operator_admin_id", c.GetUint("admin_id"),
		"request_id", c.GetString("request_id"),
	}, kv...)
	handlershared.RequestLog(c).Infow(event, fields...)
}

// GetAuthzMe 当前管理员的角色、策略与令牌角色
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := requireAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	tokenRoles := c.GetStringSlice("admin_roles")
	if tokenRoles == nil {
		tokenRoles = []string{}
	}
	response.Success(c, authzMeView{
		AdminID:    adminID,
		Username:   c.GetString("username"),
		IsSuper:    c.GetBool("admin_is_super"),
		Roles:      roles,
		TokenRoles: tokenRoles,
		Policies:   policies,
	})
}

// ListAuthzRoles 角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRole 登记角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req createRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	authzChanged(c, "admin_authz_role_created", "role", role)
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除自定义角色，预置角色返回 409
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondWithMappedError(c, err, roleWriteErrorRules, response.CodeBadRequest, "error.role_invalid")
		return
	}
	authzChanged(c, "admin_authz_role_deleted", "role", role)
	response.Success(c, nil)
}

// GetAuthzRolePolicies 角色直接持有的策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	h.changeRolePolicy(c, true)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	h.changeRolePolicy(c, false)
}

func (h *Handler) changeRolePolicy(c *gin.Context, grant bool) {
	var req rolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	apply, event := h.AuthzService.RevokeRolePolicy, "admin_authz_policy_revoked"
	if grant {
		apply, event = h.AuthzService.GrantRolePolicy, "admin_authz_policy_granted"
	}
	if err := apply(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.policy_invalid", err)
		return
	}
	authzChanged(c, event, "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, nil)
}

// GetAuthzAdminRoles 管理员在本服务内的角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := adminIDParam(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 覆盖管理员角色；账号本身由统一认证服务维护
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := adminIDParam(c)
	if !ok {
		return
	}
	var req adminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	authzChanged(c, "admin_authz_admin_roles_updated", "target_admin_id", adminID, "roles", req.Roles)
	response.Success(c, nil)
}

func adminIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// roleParam 路径中的角色名允许 URL 编码（如 role%3Aanalyst）
func roleParam(c *gin.Context) (string, bool) {
	raw := c.Param("role")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	role := strings.TrimSpace(raw)
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
		return "", false
	}
	return role, true
}
