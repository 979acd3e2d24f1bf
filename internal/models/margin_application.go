package models

import "time"

// MarginApplication 预订利润应用记录（每个预订一条，用于计数幂等）
type MarginApplication struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                        // 主键
	BookingID      string    `gorm:"size:64;uniqueIndex;not null" json:"booking_id"`              // 预订号
	RuleID         *uint     `gorm:"index" json:"rule_id"`                                        // 命中规则（为空表示默认利润）
	RuleName       string    `gorm:"size:120" json:"rule_name"`                                   // 命中规则名称快照
	BasePrice      Money     `gorm:"type:decimal(20,2);not null" json:"base_price"`               // 基础价
	MarginAmount   Money     `gorm:"type:decimal(20,2);not null" json:"margin_amount"`            // 利润
	FinalPrice     Money     `gorm:"type:decimal(20,2);not null" json:"final_price"`              // 最终价
	MarginPercent  Money     `gorm:"type:decimal(10,2);not null;default:0" json:"margin_percent"` // 实际利润率
	Currency       string    `gorm:"size:3;not null" json:"currency"`                             // 币种
	DefaultApplied bool      `gorm:"not null;default:false" json:"default_applied"`               // 是否使用默认利润
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                     // 创建时间
}

// TableName 指定表名
func (MarginApplication) TableName() string {
	return "margin_applications"
}
