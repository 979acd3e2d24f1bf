package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/margin"
	"github.com/gaithtours/margin-engine/internal/provider"
	"github.com/gaithtours/margin-engine/internal/queue"
	"github.com/gaithtours/margin-engine/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 处理预订完成后的异步记账任务
type Consumer struct {
	margins *service.MarginService
}

func NewConsumer(c *provider.Container) *Consumer {
	if c == nil {
		return &Consumer{}
	}
	return &Consumer{margins: c.MarginService}
}

// Register 挂载任务处理器
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc(queue.TaskMarginRecord, c.handleMarginRecord)
}

func (c *Consumer) handleMarginRecord(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseMarginRecordPayload(task)
	if err != nil {
		logger.Warnw("worker_margin_record_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.BookingID == "" {
		logger.Warnw("worker_margin_record_missing_booking_id")
		return nil
	}
	if c == nil || c.margins == nil {
		return fmt.Errorf("margin service not wired for booking %s", payload.BookingID)
	}
	booking, err := payload.Booking.ToContext()
	if err != nil {
		logger.Warnw("worker_margin_record_invalid_booking", "booking_id", payload.BookingID, "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if payload.RequestID != "" {
		ctx = service.WithOperator(ctx, service.Operator{RequestID: payload.RequestID})
	}
	result, err := c.margins.EvaluateAndRecord(ctx, booking, payload.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, margin.ErrInvalidContext), errors.Is(err, margin.ErrCurrencyMismatch), errors.Is(err, margin.ErrInvalidRule):
			// 输入或规则数据问题，重试不会成功
			logger.Ctx(ctx).Warnw("worker_margin_record_rejected", "booking_id", payload.BookingID, "error", err)
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		default:
			logger.Ctx(ctx).Warnw("worker_margin_record_failed", "booking_id", payload.BookingID, "error", err)
			return err
		}
	}
	logger.Ctx(ctx).Infow("worker_margin_record_done",
		"booking_id", payload.BookingID,
		"replayed", result.Replayed,
		"default_applied", result.DefaultApplied,
		"margin_amount", result.MarginAmount.String(),
	)
	return nil
}
