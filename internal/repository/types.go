package repository

import "time"

// MarginRuleListFilter 查询利润规则列表的过滤条件
type MarginRuleListFilter struct {
	Page            int
	PageSize        int
	Status          string
	CalculationType string
	CustomerType    string
	Search          string
}

// MarginRuleAuditLogListFilter 查询规则审计日志的过滤条件
type MarginRuleAuditLogListFilter struct {
	Page        int
	PageSize    int
	RuleID      uint
	OperatorID  uint
	Action      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
