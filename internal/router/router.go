package router

import (
	"strings"

	"github.com/gaithtours/margin-engine/internal/cache"
	"github.com/gaithtours/margin-engine/internal/config"
	adminhandlers "github.com/gaithtours/margin-engine/internal/http/handlers/admin"
	pricinghandlers "github.com/gaithtours/margin-engine/internal/http/handlers/pricing"
	"github.com/gaithtours/margin-engine/internal/http/response"
	"github.com/gaithtours/margin-engine/internal/i18n"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/metrics"
	"github.com/gaithtours/margin-engine/internal/provider"
	"github.com/gaithtours/margin-engine/internal/tracing"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), tracing.GinMiddleware())
	if cfg.Metrics.Enabled {
		r.Use(metrics.GinMiddleware())
	}
	r.Use(LoggerMiddleware(log), CORSMiddleware(cfg.CORS))

	v1 := r.Group("/api/v1")
	registerPricingRoutes(v1.Group("/pricing/margin", ServiceTokenMiddleware(cfg.ServiceAuth)), pricinghandlers.New(c))
	registerAdminRoutes(
		v1.Group("/admin", JWTAuthMiddleware(c.AdminTokens), AdminRBACMiddleware(c.AuthzService)),
		adminhandlers.New(c),
		RateLimitMiddleware(cache.Client(), SimulateRateLimitRule(cfg.Redis.Prefix, cfg.Security.SimulateRateLimit), KeyByAdmin),
	)
	// 目录需在全部路由注册后读取
	r.GET("/api/v1/admin/authz/permissions/catalog",
		JWTAuthMiddleware(c.AdminTokens), AdminRBACMiddleware(c.AuthzService),
		func(ctx *gin.Context) { response.Success(ctx, permissionCatalog(r.Routes())) },
	)

	r.GET("/healthz", healthz)
	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}
	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, response.CodeNotFound, i18n.T(i18n.ResolveLocale(ctx), "error.not_found"))
	})
	return r
}

// registerPricingRoutes 预订链路调用（服务令牌）
func registerPricingRoutes(g *gin.RouterGroup, h *pricinghandlers.Handler) {
	g.POST("/evaluate", h.EvaluateMargin)
	g.POST("/record", h.RecordMargin)
	g.POST("/record-async", h.RecordMarginAsync)
}

// registerAdminRoutes 管理端接口（JWT + RBAC）
func registerAdminRoutes(g *gin.RouterGroup, h *adminhandlers.Handler, simulateLimit gin.HandlerFunc) {
	rules := g.Group("/margin-rules")
	rules.GET("", h.ListMarginRules)
	rules.POST("", h.CreateMarginRule)
	rules.GET("/audit-logs", h.ListMarginRuleAuditLogs)
	rules.POST("/simulate", simulateLimit, h.SimulateMargin)
	rules.GET("/:id", h.GetMarginRule)
	rules.PUT("/:id", h.UpdateMarginRule)
	rules.DELETE("/:id", h.DeleteMarginRule)
	rules.PATCH("/:id/toggle", h.ToggleMarginRule)

	locations := g.Group("/locations")
	locations.GET("/countries", h.ListCountries)
	locations.GET("/cities", h.ListCities)

	perms := g.Group("/authz")
	perms.GET("/me", h.GetAuthzMe)
	perms.GET("/roles", h.ListAuthzRoles)
	perms.POST("/roles", h.CreateAuthzRole)
	perms.DELETE("/roles/:role", h.DeleteAuthzRole)
	perms.GET("/roles/:role/policies", h.GetAuthzRolePolicies)
	perms.POST("/policies", h.GrantAuthzPolicy)
	perms.DELETE("/policies", h.RevokeAuthzPolicy)
	perms.GET("/admins/:id/roles", h.GetAuthzAdminRoles)
	perms.PUT("/admins/:id/roles", h.SetAuthzAdminRoles)
}
