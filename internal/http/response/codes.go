package response

// 业务状态码，取值沿用对应的 HTTP 语义
const (
	CodeOK                  = 0
	CodeBadRequest          = 400
	CodeUnauthorized        = 401
	CodeForbidden           = 403
	CodeNotFound            = 404
	CodeConflict            = 409
	CodeUnprocessableEntity = 422 // 业务规则不满足，如币种不一致
	CodeTooManyRequests     = 429
	CodeInternal            = 500
	CodeServiceUnavailable  = 503
)
