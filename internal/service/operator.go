package service

import "context"

type operatorContextKey struct{}

// Operator 发起规则变更的后台操作人
type Operator struct {
	AdminID   uint
	Subject   string
	RequestID string
}

// WithOperator 将操作人写入上下文，供审计记录使用
func WithOperator(ctx context.Context, operator Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, operator)
}

// OperatorFromContext 读取操作人，未设置时返回零值
func OperatorFromContext(ctx context.Context) Operator {
	if ctx == nil {
		return Operator{}
	}
	operator, _ := ctx.Value(operatorContextKey{}).(Operator)
	return operator
}
