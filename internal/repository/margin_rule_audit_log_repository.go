package repository

import (
	"context"
	"strings"

	"github.com/gaithtours/margin-engine/internal/models"

	"gorm.io/gorm"
)

// MarginRuleAuditLogRepository 规则审计日志数据访问接口
type MarginRuleAuditLogRepository interface {
	Create(ctx context.Context, log *models.MarginRuleAuditLog) error
	List(ctx context.Context, filter MarginRuleAuditLogListFilter) ([]models.MarginRuleAuditLog, int64, error)
}

// GormMarginRuleAuditLogRepository GORM 实现
type GormMarginRuleAuditLogRepository struct {
	db *gorm.DB
}

// NewMarginRuleAuditLogRepository 创建规则审计日志仓库
func NewMarginRuleAuditLogRepository(db *gorm.DB) *GormMarginRuleAuditLogRepository {
	return &GormMarginRuleAuditLogRepository{db: db}
}

// Create 创建审计日志
func (r *GormMarginRuleAuditLogRepository) Create(ctx context.Context, log *models.MarginRuleAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// List 查询审计日志，按时间倒序
func (r *GormMarginRuleAuditLogRepository) List(ctx context.Context, filter MarginRuleAuditLogListFilter) ([]models.MarginRuleAuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MarginRuleAuditLog{})
	if filter.RuleID != 0 {
		query = query.Where("rule_id = ?", filter.RuleID)
	}
	if filter.OperatorID != 0 {
		query = query.Where("operator_id = ?", filter.OperatorID)
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		query = query.Where("action = ?", action)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	logs := make([]models.MarginRuleAuditLog, 0)
	if err := query.Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
