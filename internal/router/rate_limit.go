package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/http/response"
	"github.com/gaithtours/margin-engine/internal/i18n"
	"github.com/gaithtours/margin-engine/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中取限流维度
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// 计数与过期需原子完成，否则首个请求后进程退出会留下永不过期的计数
var fixedWindowScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("TTL", KEYS[1])}
`)

// hit 计数一次，返回窗口内请求数与剩余秒数
func (r RateLimitRule) hit(ctx context.Context, client *redis.Client, key string) (int64, time.Duration, error) {
	values, err := fixedWindowScript.Run(ctx, client, []string{key}, r.WindowSeconds).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit reply: %v", values)
	}
	return values[0], time.Duration(values[1]) * time.Second, nil
}

// RateLimitMiddleware Redis 固定窗口限流，client 为空时不限流
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	messageKey := strings.TrimSpace(rule.MessageKey)
	if messageKey == "" {
		messageKey = "error.rate_limited"
	}
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		var subject string
		if keyFunc != nil {
			subject = strings.TrimSpace(keyFunc(c))
		}
		if subject == "" {
			subject = c.ClientIP()
		}
		key := subject
		if rule.Prefix != "" {
			key = rule.Prefix + ":" + subject
		}

		hits, remaining, err := rule.hit(c.Request.Context(), client, key)
		if err != nil {
			logger.Warnw("rate_limit_check_failed", "key", key, "error", err)
			response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
			c.Abort()
			return
		}
		if hits <= int64(rule.MaxRequests) {
			c.Next()
			return
		}

		wait := int(remaining / time.Second)
		if wait < 1 {
			wait = max(rule.WindowSeconds, 1)
		}
		response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), messageKey, wait))
		c.Abort()
	}
}

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByAdmin 已登录管理员按 ID 限流，否则退回 IP
func KeyByAdmin(c *gin.Context) string {
	if adminID := c.GetUint(adminIDContextKey); adminID > 0 {
		return fmt.Sprintf("admin:%d", adminID)
	}
	return c.ClientIP()
}

// SimulateRateLimitRule 模拟接口限流规则
func SimulateRateLimitRule(redisPrefix string, cfg config.RateLimitConfig) RateLimitRule {
	redisPrefix = strings.TrimSpace(redisPrefix)
	if redisPrefix == "" {
		redisPrefix = "me"
	}
	return RateLimitRule{
		Prefix:        redisPrefix + ":rate:simulate",
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxAttempts,
		MessageKey:    "error.rate_limited",
	}
}
