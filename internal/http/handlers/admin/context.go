package admin

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gaithtours/margin-engine/internal/http/response"
	"github.com/gaithtours/margin-engine/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// requireAdminID 鉴权中间件写入的管理员 ID，缺失时直接响应 401
func requireAdminID(c *gin.Context) (uint, bool) {
	if adminID := c.GetUint("admin_id"); adminID > 0 {
		return adminID, true
	}
	respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
	return 0, false
}

// operatorContext 将当前管理员挂到请求上下文，供服务层写审计日志
func operatorContext(c *gin.Context) context.Context {
	return service.WithOperator(c.Request.Context(), service.Operator{
		AdminID:   c.GetUint("admin_id"),
		Subject:   strings.TrimSpace(c.GetString("username")),
		RequestID: c.GetString("request_id"),
	})
}

func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page"))
	pageSize, _ = strconv.Atoi(c.Query("page_size"))
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}

func parseIDParam(c *gin.Context, invalidKey string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return uint(id), true
}

// parseOptionalTime 空串返回 nil，否则按 RFC3339 解析
func parseOptionalTime(raw string) (*time.Time, error) {
	if raw = strings.TrimSpace(raw); raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
