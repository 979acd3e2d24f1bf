package router

import (
	"crypto/subtle"
	"strings"

	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/logger"

	"github.com/gin-gonic/gin"
)

const serviceTokenHeader = "X-Service-Token"

// ServiceTokenMiddleware 预订链路服务间调用鉴权，未配置令牌时一律拒绝
func ServiceTokenMiddleware(cfg config.ServiceAuthConfig) gin.HandlerFunc {
	accepted := make([][]byte, 0, len(cfg.Tokens))
	for _, token := range cfg.Tokens {
		if token = strings.TrimSpace(token); token != "" {
			accepted = append(accepted, []byte(token))
		}
	}
	return func(c *gin.Context) {
		presented := []byte(strings.TrimSpace(c.GetHeader(serviceTokenHeader)))
		if len(presented) > 0 && matchServiceToken(accepted, presented) {
			c.Next()
			return
		}
		logger.Warnw("service_token_rejected",
			"request_id", getRequestID(c),
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
		)
		abortUnauthorized(c, "error.service_token_invalid")
	}
}

// matchServiceToken 逐个常量时间比较，不因命中位置提前返回
func matchServiceToken(accepted [][]byte, presented []byte) bool {
	matched := 0
	for _, token := range accepted {
		matched |= subtle.ConstantTimeCompare(token, presented)
	}
	return matched == 1
}
