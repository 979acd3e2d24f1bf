package router

import (
	"strings"

	"github.com/gaithtours/margin-engine/internal/authz"
	"github.com/gaithtours/margin-engine/internal/http/response"
	"github.com/gaithtours/margin-engine/internal/i18n"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// 管理端鉴权写入 gin.Context 的键，handler 侧按同名键读取
const (
	adminIDContextKey       = "admin_id"
	adminUsernameContextKey = "username"
	adminRolesContextKey    = "admin_roles"
	adminIsSuperContextKey  = "admin_is_super"
)

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

// JWTAuthMiddleware 校验外部签发的管理员令牌，并把声明写入上下文
func JWTAuthMiddleware(tokens *service.AdminTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tokens.Configured() {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			abortUnauthorized(c, "error.auth_header_missing")
			return
		}
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			abortUnauthorized(c, "error.auth_header_invalid")
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		c.Set(adminIDContextKey, claims.AdminID)
		c.Set(adminUsernameContextKey, claims.Username)
		c.Set(adminRolesContextKey, claims.Roles)
		c.Set(adminIsSuperContextKey, claims.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 按路由模板与方法做 RBAC 判定，超级管理员直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable", "path", c.Request.URL.Path)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}
		adminID := c.GetUint(adminIDContextKey)
		if adminID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		roles := c.GetStringSlice(adminRolesContextKey)
		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceSubject(adminID, roles, resource, c.Request.Method)
		switch {
		case err != nil:
			logger.Errorw("admin_rbac_enforce_failed",
				"admin_id", adminID,
				"method", c.Request.Method,
				"resource", resource,
				"error", err,
			)
			abortUnauthorized(c, "error.unauthorized")
		case !allowed:
			logger.Warnw("admin_rbac_permission_denied",
				"admin_id", adminID,
				"roles", roles,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
		default:
			c.Next()
		}
	}
}
