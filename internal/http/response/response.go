package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope 统一响应结构，HTTP 状态码恒为 200，业务结果看 status_code
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// errorData 错误响应附带请求 ID，便于对照日志排查
type errorData struct {
	RequestID string `json:"request_id"`
}

func write(c *gin.Context, body Envelope) {
	c.JSON(http.StatusOK, body)
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, Envelope{StatusCode: CodeOK, Msg: "success", Data: data})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	write(c, Envelope{StatusCode: CodeOK, Msg: "success", Data: data, Pagination: &pagination})
}

// Error 错误响应
func Error(c *gin.Context, statusCode int, msg string) {
	var data interface{}
	if id := c.GetString("request_id"); id != "" {
		data = errorData{RequestID: id}
	}
	write(c, Envelope{StatusCode: statusCode, Msg: msg, Data: data})
}

// Unauthorized 401
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 403
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

// BuildPagination 构建分页信息，page_size 非正时总页数为 0
func BuildPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}
