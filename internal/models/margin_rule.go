package models

import (
	"strings"
	"time"

	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/margin"
)

// MarginRule 利润规则
type MarginRule struct {
	ID                    uint              `gorm:"primarykey" json:"id"`                                                 // 主键
	Name                  string            `gorm:"size:120;not null" json:"name"`                                        // 名称
	Description           string            `gorm:"type:text" json:"description"`                                         // 描述
	CalculationType       string            `gorm:"size:20;not null" json:"calculation_type"`                             // 计算方式（percentage/fixed/hybrid）
	PercentValue          Money             `gorm:"type:decimal(10,2);not null;default:0" json:"percent_value"`           // 百分比（0-100）
	FixedAmount           Money             `gorm:"type:decimal(20,2);not null;default:0" json:"fixed_amount"`            // 固定金额
	Currency              string            `gorm:"size:3;not null" json:"currency"`                                      // 固定金额币种
	MinMargin             Money             `gorm:"type:decimal(20,2);not null;default:0" json:"min_margin"`              // 最低利润（0 表示不限制）
	MaxMargin             Money             `gorm:"type:decimal(20,2);not null;default:0" json:"max_margin"`              // 最高利润（0 表示不限制）
	Priority              int               `gorm:"index;not null;default:0" json:"priority"`                             // 优先级，越大越优先
	Status                string            `gorm:"size:20;index;not null;default:active" json:"status"`                  // 状态（active/inactive）
	Conditions            margin.Conditions `gorm:"type:text" json:"conditions"`                                          // 适用条件（JSON）
	AppliedCount          int64             `gorm:"not null;default:0" json:"applied_count"`                              // 实际应用次数
	TotalRevenueGenerated Money             `gorm:"type:decimal(20,2);not null;default:0" json:"total_revenue_generated"` // 累计利润
	CreatedBy             uint              `gorm:"index;not null;default:0" json:"created_by"`                           // 创建人
	CreatedAt             time.Time         `gorm:"index" json:"created_at"`                                              // 创建时间
	UpdatedAt             time.Time         `gorm:"index" json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (MarginRule) TableName() string {
	return "margin_rules"
}

// IsActive 是否启用
func (r *MarginRule) IsActive() bool {
	return strings.EqualFold(r.Status, constants.MarginRuleStatusActive)
}

// ToRule 转换为评估用的不可变规则值
func (r *MarginRule) ToRule() margin.Rule {
	return margin.Rule{
		ID:              r.ID,
		Name:            r.Name,
		CalculationType: r.CalculationType,
		PercentValue:    r.PercentValue.Decimal,
		FixedAmount:     r.FixedAmount.Decimal,
		Currency:        r.Currency,
		MinMargin:       r.MinMargin.Decimal,
		MaxMargin:       r.MaxMargin.Decimal,
		Priority:        r.Priority,
		Active:          r.IsActive(),
		Conditions:      r.Conditions,
		CreatedAt:       r.CreatedAt,
	}
}
