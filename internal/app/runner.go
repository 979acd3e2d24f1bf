package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 * time.Second

// Service 随进程启停的长驻组件
// Start 阻塞至 ctx 结束或自身出错；Stop 在限时内释放资源
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并发运行一组 Service，任一退出即整体关停
type Runner struct {
	services []Service
	log      *zap.SugaredLogger
}

// NewRunner 创建运行器
func NewRunner(log *zap.SugaredLogger, services ...Service) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{services: services, log: log}
}

// Run 运行至 ctx 取消或某个服务退出，随后按注册逆序停止全部服务
func (r *Runner) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range r.services {
		g.Go(func() error {
			r.log.Infow("service_start", "service", svc.Name())
			err := svc.Start(gctx)
			r.log.Infow("service_exit", "service", svc.Name(), "error", err)
			if err == nil {
				// 正常返回也视为退出信号
				return context.Canceled
			}
			return err
		})
	}

	stopped := make(chan struct{})
	go func() {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		for i := len(r.services) - 1; i >= 0; i-- {
			svc := r.services[i]
			if err := svc.Stop(stopCtx); err != nil {
				r.log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			}
		}
		close(stopped)
	}()

	err := g.Wait()
	<-stopped
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
