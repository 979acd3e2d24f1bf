package shared

import (
	"errors"

	"github.com/gaithtours/margin-engine/internal/http/response"
	"github.com/gaithtours/margin-engine/internal/i18n"
	"github.com/gaithtours/margin-engine/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LocalizedError 携带国际化 key 与参数的错误。
type LocalizedError interface {
	error
	MessageKey() string
	MessageArgs() []interface{}
}

// RequestLog 携带 request_id 的日志
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c != nil {
		if id := c.GetString("request_id"); id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 按 key 输出本地化错误；带原始错误时记 error 日志
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	if err != nil {
		RequestLog(c).Errorw("handler_error", "code", code, "message", msg, "error", err)
	}
	response.Error(c, code, msg)
}

// RespondLocalizedError 优先使用错误自带的 key 与参数，否则回退 fallbackKey
// 校验类错误属于调用方问题，只记 warn
func RespondLocalizedError(c *gin.Context, code int, fallbackKey string, err error) {
	var localized LocalizedError
	if !errors.As(err, &localized) {
		RespondError(c, code, fallbackKey, err)
		return
	}
	locale := i18n.ResolveLocale(c)
	rejectWithMsg(c, code, i18n.Sprintf(locale, localized.MessageKey(), localizeArgs(locale, localized.MessageArgs())...), err)
}

func rejectWithMsg(c *gin.Context, code int, msg string, err error) {
	RequestLog(c).Warnw("handler_rejected", "code", code, "message", msg, "error", err)
	response.Error(c, code, msg)
}

// localizeArgs 参数本身也可能是 LocalizedError（字段错误嵌套原因）
func localizeArgs(locale string, args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, arg := range args {
		if nested, ok := arg.(LocalizedError); ok {
			out[i] = i18n.Sprintf(locale, nested.MessageKey(), localizeArgs(locale, nested.MessageArgs())...)
			continue
		}
		out[i] = arg
	}
	return out
}
