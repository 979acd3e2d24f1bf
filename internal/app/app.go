package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/models"
	"github.com/gaithtours/margin-engine/internal/provider"
	"github.com/gaithtours/margin-engine/internal/router"
	"github.com/gaithtours/margin-engine/internal/service"
	"github.com/gaithtours/margin-engine/internal/tracing"
	"github.com/gaithtours/margin-engine/internal/worker"

	"go.uber.org/zap"
)

// 进程运行模式
const (
	ModeAll    = "all"    // API + Worker
	ModeAPI    = "api"    // 仅 API
	ModeWorker = "worker" // 仅异步记账 Worker
)

// Options 启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// Run 应用入口：按模式组装服务并运行至收到信号
func Run(opts Options) error {
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	if mode == "" {
		mode = ModeAll
	}

	runner, err := BuildRunner(opts.Config, mode, opts.Logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config.Server), "mode", mode)
	return runner.Run(ctx, opts.ShutdownTimeout)
}

// BuildRunner 按运行模式组装服务
func BuildRunner(cfg *config.Config, mode string, log *zap.SugaredLogger) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	serveAPI := mode == ModeAll || mode == ModeAPI
	runWorker := mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled)
	if !serveAPI && !runWorker {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	var services []Service
	if tp, err := tracing.Init(cfg.Tracing); err != nil {
		logger.Warnw("app_init_tracing_failed", "error", err)
	} else if tp != nil {
		services = append(services, NewTracingService(tp))
	}

	container, err := provider.NewContainer(cfg, models.DB)
	if err != nil {
		return nil, err
	}
	syncCatalog(container.LocationService, cfg.Catalog.File)

	if serveAPI {
		services = append(services, NewHTTPService(listenAddr(cfg.Server), router.SetupRouter(cfg, container)))
	}
	switch {
	case runWorker:
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	default:
		// Worker 负责快照维护，未运行时由 API 进程接管
		if mode == ModeAll {
			logger.Warnw("app_worker_skipped", "reason", "queue disabled")
		}
		services = append(services, NewSnapshotService(container.MarginService))
	}
	return NewRunner(log, services...), nil
}

func listenAddr(cfg config.ServerConfig) string {
	return net.JoinHostPort(cfg.Host, cfg.Port)
}

// syncCatalog 启动时同步国家城市目录，文件缺失时跳过
func syncCatalog(locations *service.LocationService, path string) {
	path = strings.TrimSpace(path)
	if path == "" || locations == nil {
		return
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warnw("app_catalog_file_missing", "file", path, "error", err)
		return
	}
	catalog, err := service.LoadCatalogFile(path)
	if err != nil {
		logger.Errorw("app_catalog_load_failed", "file", path, "error", err)
		return
	}
	summary, err := locations.ImportCatalog(context.Background(), catalog)
	if err != nil {
		logger.Errorw("app_catalog_import_failed", "file", path, "error", err)
		return
	}
	logger.Infow("app_catalog_imported", "file", path, "countries", summary.Countries, "cities", summary.Cities)
}
