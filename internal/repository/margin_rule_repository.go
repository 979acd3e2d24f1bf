package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/models"

	"gorm.io/gorm"
)

// marginRuleEditableColumns 管理端可编辑的列，计数列与创建信息不在其中
var marginRuleEditableColumns = []string{
	"name",
	"description",
	"calculation_type",
	"percent_value",
	"fixed_amount",
	"currency",
	"min_margin",
	"max_margin",
	"priority",
	"status",
	"conditions",
	"updated_at",
}

// MarginRuleRepository 利润规则数据访问接口
type MarginRuleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.MarginRule, error)
	Create(ctx context.Context, rule *models.MarginRule) error
	Update(ctx context.Context, rule *models.MarginRule) error
	DeleteIfUnused(ctx context.Context, id uint) (bool, error)
	ToggleStatus(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter MarginRuleListFilter) ([]models.MarginRule, int64, error)
	ListActive(ctx context.Context) ([]models.MarginRule, error)
	IncrementApplied(ctx context.Context, id uint, revenue models.Money) error
	WithTx(tx *gorm.DB) *GormMarginRuleRepository
}

// GormMarginRuleRepository GORM 实现
type GormMarginRuleRepository struct {
	db *gorm.DB
}

// NewMarginRuleRepository 创建利润规则仓库
func NewMarginRuleRepository(db *gorm.DB) *GormMarginRuleRepository {
	return &GormMarginRuleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMarginRuleRepository) WithTx(tx *gorm.DB) *GormMarginRuleRepository {
	if tx == nil {
		return r
	}
	return &GormMarginRuleRepository{db: tx}
}

// GetByID 根据ID获取规则
func (r *GormMarginRuleRepository) GetByID(ctx context.Context, id uint) (*models.MarginRule, error) {
	var rule models.MarginRule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// Create 创建规则
func (r *GormMarginRuleRepository) Create(ctx context.Context, rule *models.MarginRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// Update 整体替换可编辑字段（单条 UPDATE，计数列不受影响）
func (r *GormMarginRuleRepository) Update(ctx context.Context, rule *models.MarginRule) error {
	result := r.db.WithContext(ctx).Model(&models.MarginRule{ID: rule.ID}).
		Select(marginRuleEditableColumns).
		Updates(rule)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteIfUnused 仅当规则从未被实际预订使用时删除，返回是否删除
func (r *GormMarginRuleRepository) DeleteIfUnused(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND applied_count = 0", id).
		Delete(&models.MarginRule{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ToggleStatus 原子切换启用状态，返回规则是否存在
func (r *GormMarginRuleRepository) ToggleStatus(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.MarginRule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": gorm.Expr(
				"CASE WHEN status = ? THEN ? ELSE ? END",
				constants.MarginRuleStatusActive,
				constants.MarginRuleStatusInactive,
				constants.MarginRuleStatusActive,
			),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 获取规则列表，按优先级降序
func (r *GormMarginRuleRepository) List(ctx context.Context, filter MarginRuleListFilter) ([]models.MarginRule, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MarginRule{})
	dialect := dialectOf(r.db)

	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", strings.ToLower(status))
	}
	if calcType := strings.TrimSpace(filter.CalculationType); calcType != "" {
		query = query.Where("calculation_type = ?", strings.ToLower(calcType))
	}
	if customerType := strings.ToLower(strings.TrimSpace(filter.CustomerType)); customerType != "" {
		query = query.Where(dialect.jsonText("conditions", "customer_type")+" = ?", customerType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		clause, args := dialect.anyLike([]string{"name", "description", "conditions"}, "%"+search+"%")
		query = query.Where(clause, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	rules := make([]models.MarginRule, 0)
	if err := query.Order("priority DESC").Order("id DESC").Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

// ListActive 获取全部启用规则（用于构建评估快照）
func (r *GormMarginRuleRepository) ListActive(ctx context.Context) ([]models.MarginRule, error) {
	rules := make([]models.MarginRule, 0)
	err := r.db.WithContext(ctx).
		Where("status = ?", constants.MarginRuleStatusActive).
		Order("priority DESC").Order("id DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// IncrementApplied 原子累加应用次数与累计利润
func (r *GormMarginRuleRepository) IncrementApplied(ctx context.Context, id uint, revenue models.Money) error {
	result := r.db.WithContext(ctx).Model(&models.MarginRule{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"applied_count":           gorm.Expr("applied_count + ?", 1),
			"total_revenue_generated": gorm.Expr("total_revenue_generated + ?", revenue.Decimal.Round(2)),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
