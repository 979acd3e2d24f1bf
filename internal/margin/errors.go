package margin

import "errors"

var (
	// ErrInvalidContext 评估上下文缺失或格式错误
	ErrInvalidContext = errors.New("invalid booking context")
	// ErrCurrencyMismatch 固定金额规则币种与报价币种不一致
	ErrCurrencyMismatch = errors.New("margin rule currency mismatch")
	// ErrInvalidConditions 规则条件不合法
	ErrInvalidConditions = errors.New("invalid margin rule conditions")
	// ErrInvalidRule 规则数值不合法（数据完整性问题，不做猜测）
	ErrInvalidRule = errors.New("invalid margin rule")
)
