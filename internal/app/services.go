package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/service"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// HTTPService 管理端与预订链路 API
type HTTPService struct {
	server *http.Server
}

// NewHTTPService 创建 HTTP 服务
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{server: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

func (s *HTTPService) Name() string { return "http" }

// Start 阻塞监听，Shutdown 触发的关闭不视为错误
func (s *HTTPService) Start(context.Context) error {
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 等待在途请求完成
func (s *HTTPService) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// SnapshotService 在未运行 Worker 的 API 进程中维护启用规则快照
type SnapshotService struct {
	margin *service.MarginService
}

// NewSnapshotService 创建快照维护服务
func NewSnapshotService(margin *service.MarginService) *SnapshotService {
	return &SnapshotService{margin: margin}
}

func (s *SnapshotService) Name() string { return "margin_snapshot" }

// Start 订阅失效广播并预热快照，随后阻塞至 ctx 结束
func (s *SnapshotService) Start(ctx context.Context) error {
	if s.margin != nil {
		s.margin.WatchInvalidations(ctx)
		if err := s.margin.Warm(ctx); err != nil {
			logger.Warnw("app_margin_snapshot_warm_failed", "error", err)
		}
	}
	<-ctx.Done()
	return nil
}

func (s *SnapshotService) Stop(context.Context) error { return nil }

// TracingService 退出时刷新未上报的 span
type TracingService struct {
	provider *sdktrace.TracerProvider
}

// NewTracingService 创建链路追踪服务
func NewTracingService(provider *sdktrace.TracerProvider) *TracingService {
	return &TracingService{provider: provider}
}

func (s *TracingService) Name() string { return "tracing" }

func (s *TracingService) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *TracingService) Stop(ctx context.Context) error {
	return s.provider.Shutdown(ctx)
}
