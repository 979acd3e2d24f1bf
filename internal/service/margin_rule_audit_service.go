package service

import (
	"context"
	"strings"
	"time"

	"github.com/gaithtours/margin-engine/internal/models"
	"github.com/gaithtours/margin-engine/internal/repository"
)

// 审计动作
const (
	MarginRuleAuditActionCreate = "create"
	MarginRuleAuditActionUpdate = "update"
	MarginRuleAuditActionDelete = "delete"
	MarginRuleAuditActionToggle = "toggle"
)

// MarginRuleAuditRecordInput 规则审计记录输入
type MarginRuleAuditRecordInput struct {
	RuleID          uint
	RuleName        string
	OperatorID      uint
	OperatorSubject string
	Action          string
	RequestID       string
	Detail          models.JSON
}

// MarginRuleAuditService 规则变更审计服务
type MarginRuleAuditService struct {
	repo repository.MarginRuleAuditLogRepository
}

// NewMarginRuleAuditService 创建规则审计服务
func NewMarginRuleAuditService(repo repository.MarginRuleAuditLogRepository) *MarginRuleAuditService {
	return &MarginRuleAuditService{repo: repo}
}

// Record 记录规则审计日志
func (s *MarginRuleAuditService) Record(ctx context.Context, input MarginRuleAuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if input.RuleID == 0 {
		return nil
	}
	if strings.TrimSpace(input.Action) == "" {
		return nil
	}

	item := &models.MarginRuleAuditLog{
		RuleID:          input.RuleID,
		RuleName:        strings.TrimSpace(input.RuleName),
		OperatorID:      input.OperatorID,
		OperatorSubject: strings.TrimSpace(input.OperatorSubject),
		Action:          strings.ToLower(strings.TrimSpace(input.Action)),
		RequestID:       strings.TrimSpace(input.RequestID),
		DetailJSON:      input.Detail,
		CreatedAt:       time.Now(),
	}
	return s.repo.Create(ctx, item)
}

// ListForAdmin 管理端查询规则审计日志
func (s *MarginRuleAuditService) ListForAdmin(ctx context.Context, filter repository.MarginRuleAuditLogListFilter) ([]models.MarginRuleAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.MarginRuleAuditLog{}, 0, nil
	}
	return s.repo.List(ctx, filter)
}
