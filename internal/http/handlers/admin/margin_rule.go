package admin

import (
	"strings"

	handlershared "github.com/gaithtours/margin-engine/internal/http/handlers/shared"
	"github.com/gaithtours/margin-engine/internal/http/response"
	"github.com/gaithtours/margin-engine/internal/margin"
	"github.com/gaithtours/margin-engine/internal/models"
	"github.com/gaithtours/margin-engine/internal/repository"
	"github.com/gaithtours/margin-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// marginRulePayload 创建/更新利润规则请求体
type marginRulePayload struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	CalculationType string            `json:"calculation_type"`
	PercentValue    models.Money      `json:"percent_value"`
	FixedAmount     models.Money      `json:"fixed_amount"`
	Currency        string            `json:"currency"`
	MinMargin       models.Money      `json:"min_margin"`
	MaxMargin       models.Money      `json:"max_margin"`
	Priority        int               `json:"priority"`
	IsActive        *bool             `json:"is_active"`
	Conditions      margin.Conditions `json:"conditions"`
}

func (p marginRulePayload) toInput() service.MarginRuleInput {
	return service.MarginRuleInput{
		Name:            p.Name,
		Description:     p.Description,
		CalculationType: p.CalculationType,
		PercentValue:    p.PercentValue,
		FixedAmount:     p.FixedAmount,
		Currency:        p.Currency,
		MinMargin:       p.MinMargin,
		MaxMargin:       p.MaxMargin,
		Priority:        p.Priority,
		IsActive:        p.IsActive,
		Conditions:      p.Conditions,
	}
}

// marginRuleView 规则响应，附带徽标与精确度
type marginRuleView struct {
	models.MarginRule
	Badges      []string `json:"badges"`
	Specificity int      `json:"specificity"`
	IsGlobal    bool     `json:"is_global"`
}

func newMarginRuleView(rule models.MarginRule) marginRuleView {
	return marginRuleView{
		MarginRule:  rule,
		Badges:      rule.Conditions.Badges(),
		Specificity: rule.Conditions.Specificity(),
		IsGlobal:    rule.Conditions.IsGlobal(),
	}
}

var marginRuleWriteErrorRules = []handlershared.MappedError{
	{Target: service.ErrMarginRuleInvalid, Code: response.CodeBadRequest, Key: "error.margin_rule_invalid", Localized: true},
	{Target: service.ErrMarginRuleNotFound, Code: response.CodeNotFound, Key: "error.margin_rule_not_found"},
}

var marginRuleDeleteErrorRules = []handlershared.MappedError{
	{Target: service.ErrMarginRuleNotFound, Code: response.CodeNotFound, Key: "error.margin_rule_not_found"},
	{Target: service.ErrMarginRuleInUse, Code: response.CodeConflict, Key: "error.margin_rule_in_use"},
}

var marginSimulateErrorRules = []handlershared.MappedError{
	{Target: margin.ErrInvalidContext, Code: response.CodeBadRequest, Key: "error.margin_context_invalid", Detail: true},
	{Target: margin.ErrCurrencyMismatch, Code: response.CodeUnprocessableEntity, Key: "error.margin_currency_mismatch"},
}

// ListMarginRules 获取利润规则列表
func (h *Handler) ListMarginRules(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.MarginRuleListFilter{
		Page:            page,
		PageSize:        pageSize,
		Status:          strings.TrimSpace(c.Query("status")),
		CalculationType: strings.TrimSpace(c.Query("calculation_type")),
		CustomerType:    strings.TrimSpace(c.Query("customer_type")),
		Search:          strings.TrimSpace(c.Query("search")),
	}

	rules, total, err := h.MarginRuleService.List(c.Request.Context(), filter)
	if err != nil {
		respondWithMappedError(c, err, marginRuleWriteErrorRules, response.CodeInternal, "error.margin_rule_fetch_failed")
		return
	}

	items := make([]marginRuleView, 0, len(rules))
	for _, rule := range rules {
		items = append(items, newMarginRuleView(rule))
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetMarginRule 获取利润规则详情
func (h *Handler) GetMarginRule(c *gin.Context) {
	id, ok := parseIDParam(c, "error.margin_rule_not_found")
	if !ok {
		return
	}

	rule, err := h.MarginRuleService.Get(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, marginRuleWriteErrorRules, response.CodeInternal, "error.margin_rule_fetch_failed")
		return
	}
	response.Success(c, newMarginRuleView(*rule))
}

// CreateMarginRule 创建利润规则
func (h *Handler) CreateMarginRule(c *gin.Context) {
	var req marginRulePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	rule, err := h.MarginRuleService.Create(operatorContext(c), req.toInput())
	if err != nil {
		respondWithMappedError(c, err, marginRuleWriteErrorRules, response.CodeInternal, "error.margin_rule_create_failed")
		return
	}
	response.Success(c, newMarginRuleView(*rule))
}

// UpdateMarginRule 更新利润规则（整体替换）
func (h *Handler) UpdateMarginRule(c *gin.Context) {
	id, ok := parseIDParam(c, "error.margin_rule_not_found")
	if !ok {
		return
	}
	var req marginRulePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	rule, err := h.MarginRuleService.Update(operatorContext(c), id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, marginRuleWriteErrorRules, response.CodeInternal, "error.margin_rule_update_failed")
		return
	}
	response.Success(c, newMarginRuleView(*rule))
}

// DeleteMarginRule 删除利润规则
func (h *Handler) DeleteMarginRule(c *gin.Context) {
	id, ok := parseIDParam(c, "error.margin_rule_not_found")
	if !ok {
		return
	}

	if err := h.MarginRuleService.Delete(operatorContext(c), id); err != nil {
		respondWithMappedError(c, err, marginRuleDeleteErrorRules, response.CodeInternal, "error.margin_rule_delete_failed")
		return
	}
	response.Success(c, nil)
}

// ToggleMarginRule 切换利润规则启用状态
func (h *Handler) ToggleMarginRule(c *gin.Context) {
	id, ok := parseIDParam(c, "error.margin_rule_not_found")
	if !ok {
		return
	}

	rule, err := h.MarginRuleService.ToggleStatus(operatorContext(c), id)
	if err != nil {
		respondWithMappedError(c, err, marginRuleWriteErrorRules, response.CodeInternal, "error.margin_rule_update_failed")
		return
	}
	response.Success(c, newMarginRuleView(*rule))
}

// SimulateMargin 模拟利润计算，返回命中规则排序
func (h *Handler) SimulateMargin(c *gin.Context) {
	var req margin.BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	booking, err := req.ToContext()
	if err != nil {
		respondWithMappedError(c, err, marginSimulateErrorRules, response.CodeBadRequest, "error.bad_request")
		return
	}

	result, err := h.MarginService.Simulate(operatorContext(c), booking)
	if err != nil {
		respondWithMappedError(c, err, marginSimulateErrorRules, response.CodeInternal, "error.margin_evaluate_failed")
		return
	}
	response.Success(c, result)
}
