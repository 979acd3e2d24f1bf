package i18n

var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":                "请求参数错误",
		"error.unauthorized":               "未登录或登录已失效",
		"error.forbidden":                  "无权限访问",
		"error.not_found":                  "资源不存在",
		"error.internal":                   "服务器内部错误",
		"error.jwt_secret_missing":         "鉴权配置缺失",
		"error.token_invalid":              "令牌无效或已过期",
		"error.auth_header_missing":        "缺少 Authorization 请求头",
		"error.auth_header_invalid":        "Authorization 请求头格式错误",
		"error.service_token_invalid":      "服务令牌无效",
		"error.admin_id_invalid":           "管理员标识无效",
		"error.margin_rule_invalid":        "利润规则参数不合法",
		"error.margin_rule_field_invalid":  "利润规则字段 %s 不合法：%s",
		"error.margin_rule_not_found":      "利润规则不存在",
		"error.margin_rule_in_use":         "利润规则已被预订使用，无法删除，请改为停用",
		"error.margin_rule_create_failed":  "创建利润规则失败",
		"error.margin_rule_update_failed":  "更新利润规则失败",
		"error.margin_rule_delete_failed":  "删除利润规则失败",
		"error.margin_rule_fetch_failed":   "获取利润规则失败",
		"error.margin_context_invalid":     "预订上下文不合法：%s",
		"error.margin_currency_mismatch":   "规则币种与报价币种不一致",
		"error.margin_evaluate_failed":     "利润计算失败",
		"error.margin_record_failed":       "利润记录失败",
		"error.margin_booking_id_required": "缺少预订号",
		"error.queue_unavailable":          "异步队列不可用",
		"error.location_fetch_failed":      "获取国家城市目录失败",
		"error.audit_log_fetch_failed":     "获取审计日志失败",
		"error.rate_limit_unavailable":     "限流服务不可用",
		"error.rate_limited":               "请求过于频繁，请 %d 秒后重试",
		"error.role_invalid":               "角色名称不合法",
		"error.role_builtin":               "预置角色不可删除",
		"error.policy_invalid":             "授权策略参数不合法",
		"error.authz_failed":               "授权操作失败",
		"validation.required":              "不能为空",
		"validation.too_long":              "长度不能超过 %d",
		"validation.enum":                  "取值必须为 %s 之一",
		"validation.range":                 "必须在 %s 到 %s 之间",
		"validation.non_negative":          "不能为负数",
		"validation.min_gt_max":            "最小值不能大于最大值",
		"validation.unknown_country":       "未知国家：%s",
		"validation.unknown_city":          "未知城市：%s",
		"validation.invalid":               "格式错误",
		"validation.unused_for_type":       "计算方式 %s 不使用该字段，请置为 0",
	},
	LocaleEnUS: {
		"error.bad_request":                "Bad request",
		"error.unauthorized":               "Unauthorized",
		"error.forbidden":                  "Forbidden",
		"error.not_found":                  "Not found",
		"error.internal":                   "Internal server error",
		"error.jwt_secret_missing":         "Authentication is not configured",
		"error.token_invalid":              "Token is invalid or expired",
		"error.auth_header_missing":        "Missing Authorization header",
		"error.auth_header_invalid":        "Malformed Authorization header",
		"error.service_token_invalid":      "Invalid service token",
		"error.admin_id_invalid":           "Invalid admin id",
		"error.margin_rule_invalid":        "Invalid margin rule",
		"error.margin_rule_field_invalid":  "Margin rule field %s is invalid: %s",
		"error.margin_rule_not_found":      "Margin rule not found",
		"error.margin_rule_in_use":         "Margin rule has been applied to bookings and cannot be deleted; deactivate it instead",
		"error.margin_rule_create_failed":  "Failed to create margin rule",
		"error.margin_rule_update_failed":  "Failed to update margin rule",
		"error.margin_rule_delete_failed":  "Failed to delete margin rule",
		"error.margin_rule_fetch_failed":   "Failed to load margin rules",
		"error.margin_context_invalid":     "Invalid booking context: %s",
		"error.margin_currency_mismatch":   "Rule currency does not match the booking currency",
		"error.margin_evaluate_failed":     "Margin evaluation failed",
		"error.margin_record_failed":       "Failed to record margin",
		"error.margin_booking_id_required": "booking_id is required",
		"error.queue_unavailable":          "Async queue is unavailable",
		"error.location_fetch_failed":      "Failed to load location catalog",
		"error.audit_log_fetch_failed":     "Failed to load audit logs",
		"error.rate_limit_unavailable":     "Rate limiter is unavailable",
		"error.rate_limited":               "Too many requests, retry in %d seconds",
		"error.role_invalid":               "Invalid role name",
		"error.role_builtin":               "Builtin roles cannot be deleted",
		"error.policy_invalid":             "Invalid authorization policy",
		"error.authz_failed":               "Authorization operation failed",
		"validation.required":              "is required",
		"validation.too_long":              "must be at most %d characters",
		"validation.enum":                  "must be one of %s",
		"validation.range":                 "must be between %s and %s",
		"validation.non_negative":          "must not be negative",
		"validation.min_gt_max":            "min must not exceed max",
		"validation.unknown_country":       "unknown country: %s",
		"validation.unknown_city":          "unknown city: %s",
		"validation.invalid":               "is malformed",
		"validation.unused_for_type":       "is not used by calculation type %s and must be 0",
	},
}
