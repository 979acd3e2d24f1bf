package admin

import "github.com/gaithtours/margin-engine/internal/provider"

// Handler 管理端接口：利润规则、地点目录、权限管理
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
