package provider

import (
	"fmt"
	"time"

	"github.com/gaithtours/margin-engine/internal/authz"
	"github.com/gaithtours/margin-engine/internal/cache"
	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/queue"
	"github.com/gaithtours/margin-engine/internal/repository"
	"github.com/gaithtours/margin-engine/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Container 进程级依赖集合，handler 与 worker 共用
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	MarginRuleRepo        repository.MarginRuleRepository
	MarginApplicationRepo repository.MarginApplicationRepository
	MarginRuleAuditRepo   repository.MarginRuleAuditLogRepository
	LocationRepo          repository.LocationRepository

	AuthzService           *authz.Service
	AdminTokens            *service.AdminTokenService
	LocationService        *service.LocationService
	MarginRuleAuditService *service.MarginRuleAuditService
	MarginService          *service.MarginService
	MarginRuleService      *service.MarginRuleService
}

// NewContainer 组装依赖。Redis 与队列不可用时降级运行，授权初始化失败直接返回错误
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_redis_degraded", "error", err)
	}
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Warnw("provider_queue_degraded", "error", err)
	}

	authzService, err := authz.NewService(db)
	if err != nil {
		return nil, fmt.Errorf("init authz: %w", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return nil, fmt.Errorf("bootstrap builtin roles: %w", err)
	}

	c := &Container{
		Config:                cfg,
		QueueClient:           queueClient,
		AuthzService:          authzService,
		AdminTokens:           service.NewAdminTokenService(cfg.JWT.SecretKey, cfg.JWT.Issuer),
		MarginRuleRepo:        repository.NewMarginRuleRepository(db),
		MarginApplicationRepo: repository.NewMarginApplicationRepository(db),
		MarginRuleAuditRepo:   repository.NewMarginRuleAuditLogRepository(db),
		LocationRepo:          repository.NewLocationRepository(db),
	}
	c.LocationService = service.NewLocationService(db, c.LocationRepo)
	c.MarginRuleAuditService = service.NewMarginRuleAuditService(c.MarginRuleAuditRepo)
	c.MarginService = service.NewMarginService(db, c.MarginRuleRepo, c.MarginApplicationRepo, cache.NewMarginRuleStore(), MarginOptions(cfg.Margin))
	c.MarginRuleService = service.NewMarginRuleService(c.MarginRuleRepo, c.LocationService, c.MarginRuleAuditService, c.MarginService, cfg.Margin.PricingCurrency)
	return c, nil
}

// MarginOptions 将配置转换为评估服务参数
func MarginOptions(cfg config.MarginConfig) service.MarginServiceOptions {
	return service.MarginServiceOptions{
		DefaultPercent:  decimal.NewFromFloat(cfg.DefaultPercent),
		PricingCurrency: cfg.PricingCurrency,
		CacheTTL:        time.Duration(cfg.CacheTTLSeconds) * time.Second,
	}
}
