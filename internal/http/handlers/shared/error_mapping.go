package shared

import (
	"errors"
	"strings"

	"github.com/gaithtours/margin-engine/internal/i18n"

	"github.com/gin-gonic/gin"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
// Localized 为 true 时优先使用错误自带的国际化信息；Detail 为 true 时把错误描述作为参数拼入消息。
type MappedError struct {
	Target    error
	Code      int
	Key       string
	Localized bool
	Detail    bool
}

// RespondWithMappedError 按映射表输出错误，未命中时使用兜底 code 与 key。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if !errors.Is(err, rule.Target) {
			continue
		}
		switch {
		case rule.Localized:
			RespondLocalizedError(c, rule.Code, rule.Key, err)
		case rule.Detail:
			rejectWithMsg(c, rule.Code, i18n.Sprintf(i18n.ResolveLocale(c), rule.Key, errorDetail(err, rule.Target)), err)
		default:
			RespondError(c, rule.Code, rule.Key, nil)
		}
		return
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// ConcatMappedErrors 合并多组映射。
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// errorDetail 去掉哨兵错误前缀，只保留具体描述
func errorDetail(err, target error) string {
	text := err.Error()
	prefix := target.Error() + ": "
	if idx := strings.Index(text, prefix); idx >= 0 {
		return strings.TrimSpace(text[idx+len(prefix):])
	}
	return text
}
