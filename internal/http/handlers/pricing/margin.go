package pricing

import (
	"fmt"
	"strings"

	"github.com/gaithtours/margin-engine/internal/http/response"
	"github.com/gaithtours/margin-engine/internal/margin"
	"github.com/gaithtours/margin-engine/internal/queue"
	"github.com/gaithtours/margin-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// marginRecordPayload 预订完成后的利润记录请求
type marginRecordPayload struct {
	BookingID string              `json:"booking_id"`
	Booking   margin.BookingInput `json:"booking"`
}

// EvaluateMargin 报价阶段计算利润（不落库）
func (h *Handler) EvaluateMargin(c *gin.Context) {
	var req margin.BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	booking, err := req.ToContext()
	if err != nil {
		respondWithMappedError(c, err, marginContextErrorRules, response.CodeBadRequest, "error.bad_request")
		return
	}

	result, err := h.MarginService.Evaluate(c.Request.Context(), booking)
	if err != nil {
		respondWithMappedError(c, err, marginContextErrorRules, response.CodeInternal, "error.margin_evaluate_failed")
		return
	}
	response.Success(c, result)
}

// RecordMargin 预订完成后同步记录利润，同一预订号重复调用返回首次结果
func (h *Handler) RecordMargin(c *gin.Context) {
	var req marginRecordPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	booking, err := req.Booking.ToContext()
	if err != nil {
		respondWithMappedError(c, err, marginRecordErrorRules, response.CodeBadRequest, "error.bad_request")
		return
	}

	ctx := service.WithOperator(c.Request.Context(), service.Operator{RequestID: requestID(c)})
	result, err := h.MarginService.EvaluateAndRecord(ctx, booking, req.BookingID)
	if err != nil {
		respondWithMappedError(c, err, marginRecordErrorRules, response.CodeInternal, "error.margin_record_failed")
		return
	}
	response.Success(c, result)
}

// RecordMarginAsync 预订完成后异步记录利润
func (h *Handler) RecordMarginAsync(c *gin.Context) {
	var req marginRecordPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	bookingID := strings.TrimSpace(req.BookingID)
	if bookingID == "" {
		respondWithMappedError(c, service.ErrBookingIDRequired, marginRecordErrorRules, response.CodeBadRequest, "error.bad_request")
		return
	}
	booking, err := req.Booking.ToContext()
	if err == nil {
		err = booking.Normalize().Validate()
	}
	if err != nil {
		respondWithMappedError(c, err, marginRecordErrorRules, response.CodeBadRequest, "error.bad_request")
		return
	}
	if !h.QueueClient.Enabled() {
		respondWithMappedError(c, service.ErrQueueUnavailable, marginRecordErrorRules, response.CodeServiceUnavailable, "error.queue_unavailable")
		return
	}

	err = h.QueueClient.EnqueueMarginRecord(c.Request.Context(), queue.MarginRecordPayload{
		BookingID: bookingID,
		RequestID: requestID(c),
		Booking:   req.Booking,
	})
	if err != nil {
		respondWithMappedError(c, fmt.Errorf("enqueue margin record: %w", err), marginRecordErrorRules, response.CodeInternal, "error.margin_record_failed")
		return
	}
	response.Success(c, gin.H{
		"booking_id": bookingID,
		"queued":     true,
	})
}
