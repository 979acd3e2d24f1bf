package queue

import (
	"context"
	"errors"
	"time"

	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault

	defaultConcurrency   = 10
	marginRecordMaxRetry = 8
	marginRecordTimeout  = 30 * time.Second
)

// ErrQueueDisabled 队列未启用
var ErrQueueDisabled = errors.New("queue disabled")

// Client 异步任务投递端，未启用时所有投递返回 ErrQueueDisabled
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(redisOpt(cfg))}, nil
}

// Enabled 判断是否可投递
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭底层连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueMarginRecord 投递预订利润记账任务
// 任务 ID 取自预订号，同一预订在任务保留期内重复投递视为成功
func (c *Client) EnqueueMarginRecord(ctx context.Context, payload MarginRecordPayload) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	task, err := NewMarginRecordTask(payload)
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(DefaultQueue),
		asynq.TaskID(marginRecordTaskID(payload.BookingID)),
		asynq.MaxRetry(marginRecordMaxRetry),
		asynq.Timeout(marginRecordTimeout),
	)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict), errors.Is(err, asynq.ErrDuplicateTask):
		logger.Ctx(ctx).Debugw("queue_margin_record_duplicate", "booking_id", payload.BookingID)
		return nil
	case err != nil:
		return err
	}
	logger.Ctx(ctx).Debugw("queue_margin_record_enqueued", "booking_id", payload.BookingID, "task_id", info.ID, "queue", info.Queue)
	return nil
}

// BuildServerConfig 消费端配置，asynq 内部日志接入全局 zap
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 1},
		Logger:      logger.SW("component", "asynq"),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Ctx(ctx).Warnw("queue_task_failed", "type", task.Type(), "retried", retried, "max_retry", maxRetry, "error", err)
		}),
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	if cfg == nil {
		return asynq.RedisClientOpt{Addr: config.RedisEndpoint{}.Addr()}
	}
	return asynq.RedisClientOpt{Addr: cfg.Addr(), Password: cfg.Password, DB: cfg.DB}
}
