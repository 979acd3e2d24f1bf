package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/gaithtours/margin-engine/internal/app"
	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/models"

	"github.com/gin-gonic/gin"
)

const minSecretLength = 32

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all / api / worker")
	flag.Parse()

	fmt.Println("\033[1;36mMargin Engine\033[0m \033[2mhotel profit margin rules · evaluate · simulate · record\033[0m")

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer func() { _ = logger.Z().Sync() }()

	if err := run(cfg, *mode); err != nil {
		logger.Errorw("server_exit", "error", err)
		_ = logger.Z().Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, mode string) error {
	release := cfg.Server.Mode == "release"
	if err := checkSecrets(cfg, release); err != nil {
		return err
	}
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := models.Open(cfg.Database); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}

// checkSecrets release 模式下弱密钥或缺少服务令牌直接拒绝启动，其余模式仅告警
func checkSecrets(cfg *config.Config, release bool) error {
	var problems []string
	if isWeakSecret(cfg.JWT.SecretKey) {
		problems = append(problems, "jwt.secret is weak or still the default; use the secret shared with the auth service")
	}
	if len(cfg.ServiceAuth.Tokens) == 0 {
		problems = append(problems, "service_auth.tokens is empty; pricing endpoints will reject every call")
	}
	if len(problems) == 0 {
		return nil
	}
	if release {
		return errors.New(strings.Join(problems, "; "))
	}
	for _, problem := range problems {
		logger.Warnw("server_insecure_config", "detail", problem)
	}
	return nil
}

func isWeakSecret(secret string) bool {
	if len(secret) < minSecretLength {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
