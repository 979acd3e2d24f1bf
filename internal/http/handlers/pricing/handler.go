package pricing

import (
	handlershared "github.com/gaithtours/margin-engine/internal/http/handlers/shared"
	"github.com/gaithtours/margin-engine/internal/http/response"
	"github.com/gaithtours/margin-engine/internal/margin"
	"github.com/gaithtours/margin-engine/internal/provider"
	"github.com/gaithtours/margin-engine/internal/queue"
	"github.com/gaithtours/margin-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 预订链路定价接口处理器
// 说明：仅供内部预订服务调用，使用服务令牌鉴权。
type Handler struct {
	*provider.Container
}

// New 创建定价处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

var marginContextErrorRules = []handlershared.MappedError{
	{Target: margin.ErrInvalidContext, Code: response.CodeBadRequest, Key: "error.margin_context_invalid", Detail: true},
	{Target: margin.ErrCurrencyMismatch, Code: response.CodeUnprocessableEntity, Key: "error.margin_currency_mismatch"},
}

var marginRecordErrorRules = handlershared.ConcatMappedErrors(marginContextErrorRules, []handlershared.MappedError{
	{Target: service.ErrBookingIDRequired, Code: response.CodeBadRequest, Key: "error.margin_booking_id_required"},
	{Target: service.ErrMarginRuleNotFound, Code: response.CodeConflict, Key: "error.margin_record_failed"},
	{Target: queue.ErrQueueDisabled, Code: response.CodeServiceUnavailable, Key: "error.queue_unavailable"},
	{Target: service.ErrQueueUnavailable, Code: response.CodeServiceUnavailable, Key: "error.queue_unavailable"},
})

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []handlershared.MappedError, fallbackCode int, fallbackKey string) {
	handlershared.RespondWithMappedError(c, err, rules, fallbackCode, fallbackKey)
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}
