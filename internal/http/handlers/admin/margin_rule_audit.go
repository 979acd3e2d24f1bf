package admin

import (
	"strconv"
	"strings"

	"github.com/gaithtours/margin-engine/internal/http/response"
	"github.com/gaithtours/margin-engine/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListMarginRuleAuditLogs 获取利润规则审计日志列表
func (h *Handler) ListMarginRuleAuditLogs(c *gin.Context) {
	page, pageSize := parsePagination(c)

	ruleIDRaw := strings.TrimSpace(c.Query("rule_id"))
	operatorIDRaw := strings.TrimSpace(c.Query("operator_id"))
	action := strings.TrimSpace(c.Query("action"))
	createdFromRaw := strings.TrimSpace(c.Query("created_from"))
	createdToRaw := strings.TrimSpace(c.Query("created_to"))

	var ruleID uint
	if ruleIDRaw != "" {
		raw, err := strconv.ParseUint(ruleIDRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		ruleID = uint(raw)
	}

	var operatorID uint
	if operatorIDRaw != "" {
		raw, err := strconv.ParseUint(operatorIDRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		operatorID = uint(raw)
	}

	createdFrom, err := parseOptionalTime(createdFromRaw)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	createdTo, err := parseOptionalTime(createdToRaw)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	items, total, err := h.MarginRuleAuditService.ListForAdmin(c.Request.Context(), repository.MarginRuleAuditLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		RuleID:      ruleID,
		OperatorID:  operatorID,
		Action:      action,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_log_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}
