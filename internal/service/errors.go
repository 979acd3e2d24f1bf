package service

import (
	"errors"
	"fmt"
)

var (
	// ErrMarginRuleInvalid 利润规则参数不合法
	ErrMarginRuleInvalid = errors.New("margin rule invalid")
	// ErrMarginRuleNotFound 利润规则不存在
	ErrMarginRuleNotFound = errors.New("margin rule not found")
	// ErrMarginRuleInUse 利润规则已被预订使用，不能删除
	ErrMarginRuleInUse = errors.New("margin rule in use")
	// ErrLocationNotFound 国家或城市不在目录中
	ErrLocationNotFound = errors.New("location not found")
	// ErrBookingIDRequired 记录利润时缺少预订号
	ErrBookingIDRequired = errors.New("booking id required")
	// ErrQueueUnavailable 异步队列未配置
	ErrQueueUnavailable = errors.New("queue unavailable")
)

// FieldReason 字段校验失败原因（国际化 key + 参数）
type FieldReason struct {
	Key  string
	Args []interface{}
}

// Error 英文兜底描述
func (r FieldReason) Error() string {
	if len(r.Args) == 0 {
		return r.Key
	}
	return fmt.Sprintf("%s %v", r.Key, r.Args)
}

// MessageKey 国际化 key
func (r FieldReason) MessageKey() string { return r.Key }

// MessageArgs 国际化参数
func (r FieldReason) MessageArgs() []interface{} { return r.Args }

// ValidationError 指明具体字段的校验错误，errors.Is 可匹配 ErrMarginRuleInvalid
type ValidationError struct {
	Field  string
	Reason FieldReason
}

func newValidationError(field, key string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: FieldReason{Key: key, Args: args}}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrMarginRuleInvalid.Error(), e.Field, e.Reason.Error())
}

// Unwrap 归类为 ErrMarginRuleInvalid
func (e *ValidationError) Unwrap() error {
	return ErrMarginRuleInvalid
}

// MessageKey 国际化 key
func (e *ValidationError) MessageKey() string {
	return "error.margin_rule_field_invalid"
}

// MessageArgs 字段名 + 嵌套原因
func (e *ValidationError) MessageArgs() []interface{} {
	return []interface{}{e.Field, e.Reason}
}
