package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gaithtours/margin-engine/internal/cache"
	"github.com/gaithtours/margin-engine/internal/models"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

var errDatabaseNotReady = errors.New("database not initialized")

// healthz 检查数据库与 Redis 连通性，任一不可用返回 503
func healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	database := probe(ctx, pingDatabase)
	redisState := "disabled"
	if cache.Enabled() {
		redisState = probe(ctx, cache.Ping)
	}

	status, overall := http.StatusOK, "ok"
	if database != "ok" || redisState == "unavailable" {
		status, overall = http.StatusServiceUnavailable, "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "database": database, "redis": redisState})
}

func probe(ctx context.Context, check func(context.Context) error) string {
	if err := check(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}

func pingDatabase(ctx context.Context) error {
	if models.DB == nil {
		return errDatabaseNotReady
	}
	sqlDB, err := models.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
