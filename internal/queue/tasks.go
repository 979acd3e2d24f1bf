package queue

import (
	"encoding/json"
	"strings"

	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/margin"

	"github.com/hibiken/asynq"
)

const (
	// TaskMarginRecord 预订利润记录任务
	TaskMarginRecord = constants.TaskMarginRecord
)

// MarginRecordPayload 预订利润记录任务载荷
type MarginRecordPayload struct {
	BookingID string              `json:"booking_id"`
	RequestID string              `json:"request_id,omitempty"`
	Booking   margin.BookingInput `json:"booking"`
}

// NewMarginRecordTask 创建预订利润记录任务
func NewMarginRecordTask(payload MarginRecordPayload) (*asynq.Task, error) {
	payload.BookingID = strings.TrimSpace(payload.BookingID)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMarginRecord, body), nil
}

// ParseMarginRecordPayload 解析任务载荷
func ParseMarginRecordPayload(task *asynq.Task) (MarginRecordPayload, error) {
	var payload MarginRecordPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return MarginRecordPayload{}, err
	}
	payload.BookingID = strings.TrimSpace(payload.BookingID)
	return payload, nil
}

func marginRecordTaskID(bookingID string) string {
	return TaskMarginRecord + ":" + strings.TrimSpace(bookingID)
}
