package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gaithtours/margin-engine/internal/authz"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/api/v1/admin/"

// permissionItem 可授予的管理端权限（路由模板 + 方法）
type permissionItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// permissionCatalog 由已注册路由推导权限目录，按模块、资源、方法排序
func permissionCatalog(routes gin.RoutesInfo) []permissionItem {
	byPermission := make(map[string]permissionItem, len(routes))
	for _, route := range routes {
		method := strings.ToUpper(route.Method)
		if method == http.MethodOptions || method == http.MethodHead || !strings.HasPrefix(route.Path, adminRoutePrefix) {
			continue
		}
		object := authz.NormalizeObject(route.Path)
		item := permissionItem{
			Module:     permissionModule(object),
			Method:     method,
			Object:     object,
			Permission: method + ":" + object,
		}
		byPermission[item.Permission] = item
	}

	items := make([]permissionItem, 0, len(byPermission))
	for _, item := range byPermission {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return a.Method < b.Method
	})
	return items
}

// permissionModule 取资源路径的业务模块：/admin/<module>/...，非管理端取首段
func permissionModule(object string) string {
	segments := strings.Split(strings.Trim(object, "/"), "/")
	switch {
	case segments[0] == "":
		return "system"
	case segments[0] == "admin" && len(segments) > 1:
		return segments[1]
	default:
		return segments[0]
	}
}
