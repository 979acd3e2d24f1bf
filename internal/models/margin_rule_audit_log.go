package models

import "time"

// MarginRuleAuditLog 利润规则变更审计日志
// 说明：记录后台对利润规则的增删改与启停操作，支持按规则、操作人与时间范围检索。
type MarginRuleAuditLog struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	RuleID          uint      `gorm:"index;not null" json:"rule_id"`
	RuleName        string    `gorm:"type:varchar(120);not null;default:''" json:"rule_name"`
	OperatorID      uint      `gorm:"index;not null" json:"operator_id"`
	OperatorSubject string    `gorm:"type:varchar(100);index;not null;default:''" json:"operator_subject"`
	Action          string    `gorm:"type:varchar(50);index;not null" json:"action"`
	RequestID       string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON      JSON      `gorm:"type:json" json:"detail"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (MarginRuleAuditLog) TableName() string {
	return "margin_rule_audit_logs"
}
