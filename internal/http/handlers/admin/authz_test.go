package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gaithtours/margin-engine/internal/authz"
	"github.com/gaithtours/margin-engine/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzHandlerTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_authz_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	h := New(&provider.Container{AuthzService: authzService})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("admin_id", uint(11))
		c.Set("username", "authz.ops")
		c.Set("admin_roles", []string{"authz_admin"})
		c.Next()
	})
	r.GET("/authz/me", h.GetAuthzMe)
	r.GET("/authz/roles", h.ListAuthzRoles)
	r.POST("/authz/roles", h.CreateAuthzRole)
	r.DELETE("/authz/roles/:role", h.DeleteAuthzRole)
	r.GET("/authz/roles/:role/policies", h.GetAuthzRolePolicies)
	r.POST("/authz/policies", h.GrantAuthzPolicy)
	r.DELETE("/authz/policies", h.RevokeAuthzPolicy)
	r.GET("/authz/admins/:id/roles", h.GetAuthzAdminRoles)
	r.PUT("/authz/admins/:id/roles", h.SetAuthzAdminRoles)
	return r
}

func TestAuthzRoleLifecycle(t *testing.T) {
	r := setupAuthzHandlerTest(t)

	resp := doAdminRequest(t, r, http.MethodPost, "/authz/roles", map[string]string{"role": "revenue analyst"})
	if resp.StatusCode != 0 {
		t.Fatalf("create role status_code want 0 got %d msg=%s", resp.StatusCode, resp.Msg)
	}
	var created struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil || created.Role != "role:revenue_analyst" {
		t.Fatalf("unexpected created role: %s err=%v", resp.Data, err)
	}

	resp = doAdminRequest(t, r, http.MethodPost, "/authz/policies", map[string]string{
		"role":   "revenue_analyst",
		"object": "/api/v1/admin/margin-rules/audit-logs",
		"action": "get",
	})
	if resp.StatusCode != 0 {
		t.Fatalf("grant policy status_code want 0 got %d", resp.StatusCode)
	}

	resp = doAdminRequest(t, r, http.MethodGet, "/authz/roles/role%3Arevenue_analyst/policies", nil)
	var policies []authz.Policy
	if err := json.Unmarshal(resp.Data, &policies); err != nil {
		t.Fatalf("decode policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Object != "/admin/margin-rules/audit-logs" || policies[0].Action != "GET" {
		t.Fatalf("unexpected policies: %+v", policies)
	}

	resp = doAdminRequest(t, r, http.MethodPut, "/authz/admins/11/roles", map[string][]string{"roles": {"revenue_analyst"}})
	if resp.StatusCode != 0 {
		t.Fatalf("set admin roles status_code want 0 got %d", resp.StatusCode)
	}

	resp = doAdminRequest(t, r, http.MethodGet, "/authz/me", nil)
	var me authzMeView
	if err := json.Unmarshal(resp.Data, &me); err != nil {
		t.Fatalf("decode me failed: %v", err)
	}
	if me.AdminID != 11 || len(me.Roles) != 1 || me.Roles[0] != "role:revenue_analyst" {
		t.Fatalf("unexpected me roles: %+v", me)
	}
	if len(me.TokenRoles) != 1 || len(me.Policies) != 1 {
		t.Fatalf("unexpected me snapshot: %+v", me)
	}

	resp = doAdminRequest(t, r, http.MethodDelete, "/authz/policies", map[string]string{
		"role":   "revenue_analyst",
		"object": "/admin/margin-rules/audit-logs",
		"action": "GET",
	})
	if resp.StatusCode != 0 {
		t.Fatalf("revoke policy status_code want 0 got %d", resp.StatusCode)
	}

	resp = doAdminRequest(t, r, http.MethodDelete, "/authz/roles/revenue_analyst", nil)
	if resp.StatusCode != 0 {
		t.Fatalf("delete role status_code want 0 got %d", resp.StatusCode)
	}
	resp = doAdminRequest(t, r, http.MethodGet, "/authz/admins/11/roles", nil)
	var roles []string
	if err := json.Unmarshal(resp.Data, &roles); err != nil {
		t.Fatalf("decode admin roles failed: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("deleted role should be unassigned, got %v", roles)
	}
}

func TestDeleteBuiltinRoleConflict(t *testing.T) {
	r := setupAuthzHandlerTest(t)

	resp := doAdminRequest(t, r, http.MethodDelete, "/authz/roles/pricing_manager", nil)
	if resp.StatusCode != 409 {
		t.Fatalf("delete builtin role status_code want 409 got %d", resp.StatusCode)
	}
}

func TestAuthzAdminIDValidation(t *testing.T) {
	r := setupAuthzHandlerTest(t)

	resp := doAdminRequest(t, r, http.MethodGet, "/authz/admins/abc/roles", nil)
	if resp.StatusCode != 400 {
		t.Fatalf("invalid admin id status_code want 400 got %d", resp.StatusCode)
	}
	resp = doAdminRequest(t, r, http.MethodPost, "/authz/policies", map[string]string{"role": "x"})
	if resp.StatusCode != 400 {
		t.Fatalf("incomplete policy status_code want 400 got %d", resp.StatusCode)
	}
}
