package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/margin"
	"github.com/gaithtours/margin-engine/internal/models"
	"github.com/gaithtours/margin-engine/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var percentUpperLimit = decimal.NewFromInt(100)

// LocationResolver 地点规范化能力
type LocationResolver interface {
	CanonicalCountry(ctx context.Context, value string) (string, error)
	CanonicalCity(ctx context.Context, countryNames []string, value string) (string, error)
}

// SnapshotInvalidator 规则写入后使评估快照失效
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context)
}

// MarginRuleInput 创建/更新利润规则输入（更新为整体替换）
type MarginRuleInput struct {
	Name            string
	Description     string
	CalculationType string
	PercentValue    models.Money
	FixedAmount     models.Money
	Currency        string
	MinMargin       models.Money
	MaxMargin       models.Money
	Priority        int
	IsActive        *bool
	Conditions      margin.Conditions
}

// MarginRuleService 利润规则管理服务
type MarginRuleService struct {
	repo            repository.MarginRuleRepository
	locations       LocationResolver
	audit           *MarginRuleAuditService
	invalidator     SnapshotInvalidator
	pricingCurrency string
}

// NewMarginRuleService 创建利润规则管理服务
func NewMarginRuleService(repo repository.MarginRuleRepository, locations LocationResolver, audit *MarginRuleAuditService, invalidator SnapshotInvalidator, pricingCurrency string) *MarginRuleService {
	currency := strings.ToUpper(strings.TrimSpace(pricingCurrency))
	if currency == "" {
		currency = constants.DefaultPricingCurrency
	}
	return &MarginRuleService{
		repo:            repo,
		locations:       locations,
		audit:           audit,
		invalidator:     invalidator,
		pricingCurrency: currency,
	}
}

// Create 创建利润规则
func (s *MarginRuleService) Create(ctx context.Context, input MarginRuleInput) (*models.MarginRule, error) {
	rule := &models.MarginRule{Status: constants.MarginRuleStatusActive}
	if err := s.apply(ctx, rule, input); err != nil {
		return nil, err
	}
	rule.CreatedBy = OperatorFromContext(ctx).AdminID

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, rule, MarginRuleAuditActionCreate, ruleAuditDetail(rule))
	return rule, nil
}

// Update 整体替换规则的可编辑字段，计数与创建信息保持不变
func (s *MarginRuleService) Update(ctx context.Context, id uint, input MarginRuleInput) (*models.MarginRule, error) {
	if id == 0 {
		return nil, ErrMarginRuleNotFound
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrMarginRuleNotFound
	}
	before := ruleAuditDetail(existing)

	if err := s.apply(ctx, existing, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarginRuleNotFound
		}
		return nil, err
	}
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrMarginRuleNotFound
	}
	s.afterWrite(ctx, updated, MarginRuleAuditActionUpdate, models.JSON{
		"before": before,
		"after":  ruleAuditDetail(updated),
	})
	return updated, nil
}

// Delete 删除规则：仅允许删除从未被预订使用的规则
func (s *MarginRuleService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrMarginRuleNotFound
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrMarginRuleNotFound
	}
	deleted, err := s.repo.DeleteIfUnused(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrMarginRuleNotFound
		}
		return fmt.Errorf("%w: applied %d times", ErrMarginRuleInUse, current.AppliedCount)
	}
	s.afterWrite(ctx, existing, MarginRuleAuditActionDelete, ruleAuditDetail(existing))
	return nil
}

// ToggleStatus 切换启用状态
func (s *MarginRuleService) ToggleStatus(ctx context.Context, id uint) (*models.MarginRule, error) {
	if id == 0 {
		return nil, ErrMarginRuleNotFound
	}
	found, err := s.repo.ToggleStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrMarginRuleNotFound
	}
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrMarginRuleNotFound
	}
	s.afterWrite(ctx, rule, MarginRuleAuditActionToggle, models.JSON{"status": rule.Status})
	return rule, nil
}

// Get 获取单条规则
func (s *MarginRuleService) Get(ctx context.Context, id uint) (*models.MarginRule, error) {
	if id == 0 {
		return nil, ErrMarginRuleNotFound
	}
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrMarginRuleNotFound
	}
	return rule, nil
}

// List 规则列表
func (s *MarginRuleService) List(ctx context.Context, filter repository.MarginRuleListFilter) ([]models.MarginRule, int64, error) {
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" &&
		status != constants.MarginRuleStatusActive && status != constants.MarginRuleStatusInactive {
		return nil, 0, newValidationError("status", "validation.enum", "active, inactive")
	}
	if calcType := strings.TrimSpace(filter.CalculationType); calcType != "" && !isCalculationType(calcType) {
		return nil, 0, newValidationError("calculation_type", "validation.enum", "percentage, fixed, hybrid")
	}
	return s.repo.List(ctx, filter)
}

// apply 校验输入并写入规则实体
func (s *MarginRuleService) apply(ctx context.Context, rule *models.MarginRule, input MarginRuleInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return newValidationError("name", "validation.required")
	}
	if utf8.RuneCountInString(name) > constants.MarginRuleNameMaxLength {
		return newValidationError("name", "validation.too_long", constants.MarginRuleNameMaxLength)
	}

	calcType := strings.ToLower(strings.TrimSpace(input.CalculationType))
	if !isCalculationType(calcType) {
		return newValidationError("calculation_type", "validation.enum", "percentage, fixed, hybrid")
	}

	percent := input.PercentValue.Decimal
	if percent.IsNegative() || percent.GreaterThan(percentUpperLimit) {
		return newValidationError("percent_value", "validation.range", "0", "100")
	}
	if input.FixedAmount.Decimal.IsNegative() {
		return newValidationError("fixed_amount", "validation.non_negative")
	}
	fixed := input.FixedAmount.Decimal
	// 与计算方式无关的数值必须为 0，保存内容与提交内容一致
	if calcType == constants.MarginCalculationFixed && !percent.IsZero() {
		return newValidationError("percent_value", "validation.unused_for_type", calcType)
	}
	if calcType == constants.MarginCalculationPercentage && !fixed.IsZero() {
		return newValidationError("fixed_amount", "validation.unused_for_type", calcType)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.pricingCurrency
	}
	if !isCurrencyCode(currency) {
		return newValidationError("currency", "validation.invalid")
	}

	if input.MinMargin.Decimal.IsNegative() {
		return newValidationError("min_margin", "validation.non_negative")
	}
	if input.MaxMargin.Decimal.IsNegative() {
		return newValidationError("max_margin", "validation.non_negative")
	}
	if input.MinMargin.Decimal.IsPositive() && input.MaxMargin.Decimal.IsPositive() &&
		input.MinMargin.Decimal.GreaterThan(input.MaxMargin.Decimal) {
		return newValidationError("min_margin", "validation.min_gt_max")
	}

	conditions, err := s.normalizeConditions(ctx, input.Conditions)
	if err != nil {
		return err
	}

	rule.Name = name
	rule.Description = strings.TrimSpace(input.Description)
	rule.CalculationType = calcType
	rule.PercentValue = models.NewMoneyFromDecimal(percent)
	rule.FixedAmount = models.NewMoneyFromDecimal(fixed)
	rule.Currency = currency
	rule.MinMargin = models.NewMoneyFromDecimal(input.MinMargin.Decimal)
	rule.MaxMargin = models.NewMoneyFromDecimal(input.MaxMargin.Decimal)
	rule.Priority = input.Priority
	rule.Conditions = conditions
	if input.IsActive != nil {
		if *input.IsActive {
			rule.Status = constants.MarginRuleStatusActive
		} else {
			rule.Status = constants.MarginRuleStatusInactive
		}
	}
	return nil
}

// normalizeConditions 校验条件并将国家、城市规范为目录名称
func (s *MarginRuleService) normalizeConditions(ctx context.Context, raw margin.Conditions) (margin.Conditions, error) {
	cond := raw.Normalize()
	if err := cond.Validate(); err != nil {
		return cond, conditionValidationError(err)
	}

	if s.locations == nil {
		return cond, nil
	}
	countries := make([]string, 0, len(cond.Countries))
	for _, value := range cond.Countries {
		name, err := s.locations.CanonicalCountry(ctx, value)
		if err != nil {
			if errors.Is(err, ErrLocationNotFound) {
				return cond, newValidationError("conditions.countries", "validation.unknown_country", value)
			}
			return cond, err
		}
		countries = append(countries, name)
	}
	cities := make([]string, 0, len(cond.Cities))
	for _, value := range cond.Cities {
		name, err := s.locations.CanonicalCity(ctx, countries, value)
		if err != nil {
			if errors.Is(err, ErrLocationNotFound) {
				return cond, newValidationError("conditions.cities", "validation.unknown_city", value)
			}
			return cond, err
		}
		cities = append(cities, name)
	}
	cond.Countries = countries
	cond.Cities = cities
	// 规范化后可能出现重复（代码与名称指向同一国家）
	return cond.Normalize(), nil
}

// conditionValidationError 将条件错误转换为带字段名的校验错误
func conditionValidationError(err error) error {
	var condErr *margin.ConditionError
	if !errors.As(err, &condErr) {
		return &ValidationError{Field: "conditions", Reason: FieldReason{Key: "validation.invalid"}}
	}
	field := "conditions." + condErr.Field
	switch condErr.Reason {
	case margin.ReasonOutOfRange:
		if len(condErr.Args) == 2 {
			return newValidationError(field, "validation.range", condErr.Args[0], condErr.Args[1])
		}
	case margin.ReasonMinAboveMax:
		return newValidationError(field, "validation.min_gt_max")
	case margin.ReasonNegative:
		return newValidationError(field, "validation.non_negative")
	case margin.ReasonUnknownValue:
		return newValidationError(field, "validation.enum", strings.Join(condErr.Args, ", "))
	}
	return newValidationError(field, "validation.invalid")
}

// afterWrite 写入成功后刷新快照并记录审计，失败只记日志
func (s *MarginRuleService) afterWrite(ctx context.Context, rule *models.MarginRule, action string, detail models.JSON) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	operator := OperatorFromContext(ctx)
	err := s.audit.Record(ctx, MarginRuleAuditRecordInput{
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		OperatorID:      operator.AdminID,
		OperatorSubject: operator.Subject,
		Action:          action,
		RequestID:       operator.RequestID,
		Detail:          detail,
	})
	if err != nil {
		logger.Ctx(ctx).Warnw("margin_rule_audit_record_failed",
			"rule_id", rule.ID,
			"action", action,
			"error", err,
		)
	}
	logger.Ctx(ctx).Infow("margin_rule_changed",
		"rule_id", rule.ID,
		"action", action,
		"operator_id", operator.AdminID,
	)
}

func ruleAuditDetail(rule *models.MarginRule) models.JSON {
	return models.JSON{
		"name":             rule.Name,
		"calculation_type": rule.CalculationType,
		"percent_value":    rule.PercentValue.String(),
		"fixed_amount":     rule.FixedAmount.String(),
		"currency":         rule.Currency,
		"priority":         rule.Priority,
		"status":           rule.Status,
		"badges":           rule.Conditions.Badges(),
	}
}

func isCalculationType(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case constants.MarginCalculationPercentage, constants.MarginCalculationFixed, constants.MarginCalculationHybrid:
		return true
	}
	return false
}

func isCurrencyCode(value string) bool {
	if len(value) != 3 {
		return false
	}
	for _, r := range value {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
