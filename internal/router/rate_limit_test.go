package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gaithtours/margin-engine/internal/config"

	"github.com/gin-gonic/gin"
)

func TestKeyByAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/margin-rules/simulate", strings.NewReader(`{}`))
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByAdmin(c); key != "1.2.3.4" {
		t.Fatalf("anonymous key want 1.2.3.4 got %s", key)
	}
	c.Set("admin_id", uint(12))
	if key := KeyByAdmin(c); key != "admin:12" {
		t.Fatalf("admin key want admin:12 got %s", key)
	}
}

func TestSimulateRateLimitRule(t *testing.T) {
	rule := SimulateRateLimitRule("", config.RateLimitConfig{WindowSeconds: 30, MaxAttempts: 5})
	if rule.WindowSeconds != 30 || rule.MaxRequests != 5 {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if rule.Prefix != "me:rate:simulate" || rule.MessageKey != "error.rate_limited" {
		t.Fatalf("unexpected rule identity: %+v", rule)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestRateLimitRuleEnabled(t *testing.T) {
	cases := []struct {
		rule RateLimitRule
		want bool
	}{
		{rule: RateLimitRule{WindowSeconds: 60, MaxRequests: 10}, want: true},
		{rule: RateLimitRule{WindowSeconds: 0, MaxRequests: 10}, want: false},
		{rule: RateLimitRule{WindowSeconds: 60, MaxRequests: 0}, want: false},
	}
	for _, tc := range cases {
		if got := tc.rule.enabled(); got != tc.want {
			t.Fatalf("rule %+v enabled want %v got %v", tc.rule, tc.want, got)
		}
	}
}
