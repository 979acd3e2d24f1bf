package queue

import (
	"context"
	"testing"

	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/margin"

	"github.com/shopspring/decimal"
)

func TestMarginRecordTaskRoundTrip(t *testing.T) {
	price := decimal.RequireFromString("500.00")
	task, err := NewMarginRecordTask(MarginRecordPayload{
		BookingID: " BK-1 ",
		RequestID: "req-1",
		Booking: margin.BookingInput{
			BasePrice:   &price,
			Currency:    "SAR",
			Country:     "Saudi Arabia",
			CheckInDate: "2026-03-10",
		},
	})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskMarginRecord {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	payload, err := ParseMarginRecordPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.BookingID != "BK-1" || payload.RequestID != "req-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	ctx, err := payload.Booking.ToContext()
	if err != nil {
		t.Fatalf("booking should convert: %v", err)
	}
	if !ctx.BasePrice.Equal(price) || ctx.CheckInDate.String() != "2026-03-10" {
		t.Fatalf("unexpected booking context: %+v", ctx)
	}
}

func TestMarginRecordTaskID(t *testing.T) {
	if got := marginRecordTaskID(" BK-9 "); got != "margin:record:BK-9" {
		t.Fatalf("unexpected task id %s", got)
	}
}

func TestDisabledClientRejectsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueMarginRecord(context.Background(), MarginRecordPayload{BookingID: "BK-1"}); err != ErrQueueDisabled {
		t.Fatalf("expected queue disabled, got %v", err)
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Concurrency: 4, RedisEndpoint: config.RedisEndpoint{Port: 6380}})
	if opt.Addr != "127.0.0.1:6380" || cfg.Concurrency != 4 {
		t.Fatalf("unexpected server config: %+v %+v", opt, cfg)
	}
	if cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("default queue weight missing: %+v", cfg.Queues)
	}
	if cfg.Logger == nil || cfg.ErrorHandler == nil {
		t.Fatalf("server config should wire logger and error handler")
	}
}
