package worker

import (
	"context"
	"errors"
	"time"

	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/queue"

	"github.com/hibiken/asynq"
)

// snapshotWarmInterval 快照定期预热间隔，任务到达时无需等待重建
const snapshotWarmInterval = time.Minute

// Service 异步记账 Worker，兼管启用规则快照
type Service struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建 Worker
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, queue.ErrQueueDisabled
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	opt, serverCfg := queue.BuildServerConfig(cfg)
	return &Service{server: asynq.NewServer(opt, serverCfg), mux: mux, consumer: consumer}, nil
}

func (s *Service) Name() string { return "worker" }

// Start 启动消费并维护快照；asynq.Server.Start 非阻塞，这里阻塞至 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if margins := s.consumer.margins; margins != nil {
		margins.WatchInvalidations(ctx)
		go s.warmLoop(ctx)
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Stop 停止拉取新任务并等待在途任务完成
func (s *Service) Stop(context.Context) error {
	s.server.Shutdown()
	return nil
}

func (s *Service) warmLoop(ctx context.Context) {
	ticker := time.NewTicker(snapshotWarmInterval)
	defer ticker.Stop()
	for {
		if err := s.consumer.margins.Warm(ctx); err != nil && ctx.Err() == nil {
			logger.Warnw("worker_margin_snapshot_warm_failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
