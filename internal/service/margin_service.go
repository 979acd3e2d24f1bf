package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/margin"
	"github.com/gaithtours/margin-engine/internal/metrics"
	"github.com/gaithtours/margin-engine/internal/models"
	"github.com/gaithtours/margin-engine/internal/repository"
	"github.com/gaithtours/margin-engine/internal/tracing"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// 评估操作名（指标与链路标签）
const (
	MarginOperationSimulate = "simulate"
	MarginOperationEvaluate = "evaluate"
	MarginOperationRecord   = "record"
)

// 快照来源
const (
	snapshotSourceDB    = "db"
	snapshotSourceRedis = "redis"
)

// MarginServiceOptions 评估服务配置
type MarginServiceOptions struct {
	DefaultPercent  decimal.Decimal
	PricingCurrency string
	CacheTTL        time.Duration
}

// AppliedRuleSummary 命中规则摘要
type AppliedRuleSummary struct {
	ID              uint     `json:"id"`
	Name            string   `json:"name"`
	CalculationType string   `json:"calculation_type,omitempty"`
	Priority        int      `json:"priority"`
	Specificity     int      `json:"specificity"`
	Badges          []string `json:"badges,omitempty"`
}

// EvaluationResult 利润评估结果
type EvaluationResult struct {
	AppliedRule      *AppliedRuleSummary  `json:"applied_rule"`
	BasePrice        models.Money         `json:"base_price"`
	MarginAmount     models.Money         `json:"margin_amount"`
	FinalPrice       models.Money         `json:"final_price"`
	MarginPercent    models.Money         `json:"margin_percent"`
	Currency         string               `json:"currency"`
	DefaultApplied   bool                 `json:"default_applied"`
	MatchedRuleCount int                  `json:"matched_rule_count"`
	MatchedRules     []AppliedRuleSummary `json:"matched_rules,omitempty"`
	Simulated        bool                 `json:"simulated"`
	BookingID        string               `json:"booking_id,omitempty"`
	Replayed         bool                 `json:"replayed,omitempty"`
}

// ActiveRuleCache 跨实例共享的启用规则缓存。每次失效递增版本，回填须携带读取时的版本
type ActiveRuleCache interface {
	GetActiveRules(ctx context.Context) ([]margin.Rule, int64, bool, error)
	SetActiveRules(ctx context.Context, version int64, rules []margin.Rule, ttl time.Duration) (bool, error)
	InvalidateActiveRules(ctx context.Context) error
	WatchRuleChanges(ctx context.Context, onChange func())
}

type ruleSnapshot struct {
	rules   []margin.Rule
	builtAt time.Time
}

// MarginService 利润评估服务（模拟、报价与预订记录）
type MarginService struct {
	db              *gorm.DB
	ruleRepo        repository.MarginRuleRepository
	applicationRepo repository.MarginApplicationRepository
	store           ActiveRuleCache

	defaultPercent  decimal.Decimal
	pricingCurrency string
	cacheTTL        time.Duration

	snapshot   atomic.Pointer[ruleSnapshot]
	generation atomic.Uint64
	group      singleflight.Group
}

// NewMarginService 创建利润评估服务
func NewMarginService(db *gorm.DB, ruleRepo repository.MarginRuleRepository, applicationRepo repository.MarginApplicationRepository, store ActiveRuleCache, options MarginServiceOptions) *MarginService {
	defaultPercent := options.DefaultPercent
	if defaultPercent.IsNegative() {
		defaultPercent = decimal.NewFromInt(constants.DefaultMarginPercent)
	}
	currency := strings.ToUpper(strings.TrimSpace(options.PricingCurrency))
	if currency == "" {
		currency = constants.DefaultPricingCurrency
	}
	return &MarginService{
		db:              db,
		ruleRepo:        ruleRepo,
		applicationRepo: applicationRepo,
		store:           store,
		defaultPercent:  defaultPercent,
		pricingCurrency: currency,
		cacheTTL:        options.CacheTTL,
	}
}

// DefaultPercent 默认利润百分比
func (s *MarginService) DefaultPercent() decimal.Decimal {
	return s.defaultPercent
}

// Simulate 模拟评估（只读，附带全部命中规则）
func (s *MarginService) Simulate(ctx context.Context, booking margin.BookingContext) (*EvaluationResult, error) {
	return s.run(ctx, MarginOperationSimulate, booking)
}

// Evaluate 报价评估（只读）
func (s *MarginService) Evaluate(ctx context.Context, booking margin.BookingContext) (*EvaluationResult, error) {
	return s.run(ctx, MarginOperationEvaluate, booking)
}

// EvaluateAndRecord 评估并记录预订：同一预订号重复调用返回首次结果，计数只累加一次
func (s *MarginService) EvaluateAndRecord(ctx context.Context, booking margin.BookingContext, bookingID string) (*EvaluationResult, error) {
	started := time.Now()
	ctx, span := tracing.Start(ctx, "margin.evaluate_and_record", attribute.String("margin.booking_id", bookingID))
	defer span.End()

	result, outcome, err := s.record(ctx, booking, strings.TrimSpace(bookingID))
	if err != nil {
		tracing.RecordError(span, err)
		metrics.ObserveEvaluation(MarginOperationRecord, metrics.OutcomeError, time.Since(started))
		return nil, err
	}
	metrics.ObserveEvaluation(MarginOperationRecord, outcome, time.Since(started))
	return result, nil
}

func (s *MarginService) record(ctx context.Context, booking margin.BookingContext, bookingID string) (*EvaluationResult, string, error) {
	if bookingID == "" {
		return nil, "", ErrBookingIDRequired
	}
	if existing, err := s.applicationRepo.GetByBookingID(ctx, bookingID); err != nil {
		return nil, "", err
	} else if existing != nil {
		return resultFromApplication(existing), metrics.OutcomeReplayed, nil
	}

	result, _, err := s.evaluate(ctx, booking, false)
	if err != nil {
		return nil, "", err
	}
	result.BookingID = bookingID

	application := &models.MarginApplication{
		BookingID:      bookingID,
		BasePrice:      result.BasePrice,
		MarginAmount:   result.MarginAmount,
		FinalPrice:     result.FinalPrice,
		MarginPercent:  result.MarginPercent,
		Currency:       result.Currency,
		DefaultApplied: result.DefaultApplied,
		CreatedAt:      time.Now(),
	}
	if result.AppliedRule != nil {
		ruleID := result.AppliedRule.ID
		application.RuleID = &ruleID
		application.RuleName = result.AppliedRule.Name
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applicationRepo.WithTx(tx).Create(ctx, application); err != nil {
			return err
		}
		if application.RuleID == nil {
			return nil
		}
		return s.ruleRepo.WithTx(tx).IncrementApplied(ctx, *application.RuleID, result.MarginAmount)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 规则在快照构建后被删除，丢弃快照让重试使用最新规则
			s.dropLocalSnapshot()
			return nil, "", fmt.Errorf("%w: rule %d removed during recording", ErrMarginRuleNotFound, *application.RuleID)
		}
		// 并发重复记录：唯一索引冲突后读取已写入的结果
		if existing, lookupErr := s.applicationRepo.GetByBookingID(ctx, bookingID); lookupErr == nil && existing != nil {
			return resultFromApplication(existing), metrics.OutcomeReplayed, nil
		}
		return nil, "", err
	}

	metrics.AddRecordedMargin(result.Currency, result.MarginAmount.InexactFloat64())
	logger.Ctx(ctx).Infow("margin_recorded",
		"booking_id", bookingID,
		"rule_id", application.RuleID,
		"margin_amount", result.MarginAmount.String(),
		"currency", result.Currency,
	)
	return result, outcomeOf(result), nil
}

func (s *MarginService) run(ctx context.Context, operation string, booking margin.BookingContext) (*EvaluationResult, error) {
	started := time.Now()
	ctx, span := tracing.Start(ctx, "margin."+operation, attribute.String("margin.operation", operation))
	defer span.End()

	result, ranked, err := s.evaluate(ctx, booking, operation == MarginOperationSimulate)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.ObserveEvaluation(operation, metrics.OutcomeError, time.Since(started))
		return nil, err
	}
	if operation == MarginOperationSimulate {
		result.Simulated = true
		result.MatchedRules = make([]AppliedRuleSummary, 0, len(ranked))
		for _, rule := range ranked {
			result.MatchedRules = append(result.MatchedRules, summarizeRule(rule))
		}
	}
	span.SetAttributes(
		attribute.Bool("margin.default_applied", result.DefaultApplied),
		attribute.Int("margin.matched_rules", result.MatchedRuleCount),
	)
	metrics.ObserveEvaluation(operation, outcomeOf(result), time.Since(started))
	logger.Ctx(ctx).Debugw("margin_evaluated",
		"operation", operation,
		"matched_rules", result.MatchedRuleCount,
		"default_applied", result.DefaultApplied,
		"margin_amount", result.MarginAmount.String(),
	)
	return result, nil
}

// evaluate 纯计算：规范化上下文 → 选出胜出规则 → 计算利润
func (s *MarginService) evaluate(ctx context.Context, booking margin.BookingContext, withRanking bool) (*EvaluationResult, []margin.Rule, error) {
	booking = booking.Normalize()
	if booking.Currency == "" {
		booking.Currency = s.pricingCurrency
	}
	if err := booking.Validate(); err != nil {
		return nil, nil, err
	}

	rules, err := s.activeRules(ctx)
	if err != nil {
		return nil, nil, err
	}

	var ranked []margin.Rule
	var winner *margin.Rule
	matched := 0
	if withRanking {
		ranked = margin.Rank(rules, booking)
		matched = len(ranked)
		if matched > 0 {
			top := ranked[0]
			winner = &top
		}
	} else {
		winner = margin.Select(rules, booking)
		for _, rule := range rules {
			if rule.Active && margin.Matches(rule.Conditions, booking) {
				matched++
			}
		}
	}

	if err := margin.CheckCurrency(winner, booking.Currency); err != nil {
		return nil, nil, err
	}
	quote, err := margin.Compute(winner, booking.BasePrice, s.defaultPercent)
	if err != nil {
		return nil, nil, err
	}

	result := &EvaluationResult{
		BasePrice:        models.NewMoneyFromDecimal(quote.BasePrice),
		MarginAmount:     models.NewMoneyFromDecimal(quote.MarginAmount),
		FinalPrice:       models.NewMoneyFromDecimal(quote.FinalPrice),
		MarginPercent:    models.NewMoneyFromDecimal(quote.MarginPercent),
		Currency:         booking.Currency,
		DefaultApplied:   winner == nil,
		MatchedRuleCount: matched,
	}
	if winner != nil {
		summary := summarizeRule(*winner)
		result.AppliedRule = &summary
	}
	return result, ranked, nil
}

// activeRules 读取启用规则快照，失效后由单个调用重建
func (s *MarginService) activeRules(ctx context.Context) ([]margin.Rule, error) {
	if snap := s.snapshot.Load(); snap != nil && !s.expired(snap) {
		return snap.rules, nil
	}
	generation := s.generation.Load()
	value, err, _ := s.group.Do(strconv.FormatUint(generation, 10), func() (interface{}, error) {
		if snap := s.snapshot.Load(); snap != nil && !s.expired(snap) {
			return snap, nil
		}
		rules, source, err := s.loadRules(ctx, generation)
		if err != nil {
			return nil, err
		}
		snap := &ruleSnapshot{rules: rules, builtAt: time.Now()}
		// 构建期间发生失效则不覆盖，避免旧规则回流
		if s.generation.Load() == generation {
			s.snapshot.Store(snap)
		}
		metrics.ObserveSnapshotRebuild(source, len(rules))
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*ruleSnapshot).rules, nil
}

func (s *MarginService) loadRules(ctx context.Context, generation uint64) ([]margin.Rule, string, error) {
	shared := s.store != nil && s.cacheTTL > 0
	var version int64
	if shared {
		cached, current, hit, err := s.store.GetActiveRules(ctx)
		switch {
		case err != nil:
			// 版本未知时不回填
			logger.Ctx(ctx).Warnw("margin_rule_cache_get_failed", "error", err)
			shared = false
		case hit:
			return cached, snapshotSourceRedis, nil
		default:
			version = current
		}
	}

	records, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, "", err
	}
	rules := make([]margin.Rule, 0, len(records))
	for i := range records {
		rules = append(rules, records[i].ToRule())
	}

	// 读库期间本进程发生过失效则不回填；其他实例的失效由缓存版本比对拦截
	if shared && s.generation.Load() == generation {
		written, err := s.store.SetActiveRules(ctx, version, rules, s.cacheTTL)
		switch {
		case err != nil:
			logger.Ctx(ctx).Warnw("margin_rule_cache_set_failed", "error", err)
		case !written:
			logger.Ctx(ctx).Debugw("margin_rule_cache_set_skipped", "version", version)
		}
	}
	return rules, snapshotSourceDB, nil
}

func (s *MarginService) expired(snap *ruleSnapshot) bool {
	return s.cacheTTL > 0 && time.Since(snap.builtAt) > s.cacheTTL
}

// Warm 预热启用规则快照
func (s *MarginService) Warm(ctx context.Context) error {
	_, err := s.activeRules(ctx)
	return err
}

// Invalidate 规则变更后清除本地快照与共享缓存，并通知其他实例
func (s *MarginService) Invalidate(ctx context.Context) {
	s.dropLocalSnapshot()
	if s.store == nil {
		return
	}
	if err := s.store.InvalidateActiveRules(ctx); err != nil {
		logger.Ctx(ctx).Warnw("margin_rule_cache_invalidate_failed", "error", err)
	}
}

// WatchInvalidations 订阅其他实例的规则变更通知
func (s *MarginService) WatchInvalidations(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.store.WatchRuleChanges(ctx, s.dropLocalSnapshot)
}

func (s *MarginService) dropLocalSnapshot() {
	s.generation.Add(1)
	s.snapshot.Store(nil)
}

func summarizeRule(rule margin.Rule) AppliedRuleSummary {
	return AppliedRuleSummary{
		ID:              rule.ID,
		Name:            rule.Name,
		CalculationType: rule.CalculationType,
		Priority:        rule.Priority,
		Specificity:     rule.Specificity(),
		Badges:          rule.Conditions.Badges(),
	}
}

func resultFromApplication(application *models.MarginApplication) *EvaluationResult {
	result := &EvaluationResult{
		BasePrice:      application.BasePrice,
		MarginAmount:   application.MarginAmount,
		FinalPrice:     application.FinalPrice,
		MarginPercent:  application.MarginPercent,
		Currency:       application.Currency,
		DefaultApplied: application.DefaultApplied,
		BookingID:      application.BookingID,
		Replayed:       true,
	}
	if application.RuleID != nil {
		result.AppliedRule = &AppliedRuleSummary{ID: *application.RuleID, Name: application.RuleName}
	}
	return result
}

func outcomeOf(result *EvaluationResult) string {
	if result.DefaultApplied {
		return metrics.OutcomeDefaultApplied
	}
	return metrics.OutcomeRuleApplied
}
