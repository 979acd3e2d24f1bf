package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	return path
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: \"9090\"\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port want 9090 got %s", cfg.Server.Port)
	}
	if cfg.Margin.DefaultPercent != 15 || cfg.Margin.PricingCurrency != "SAR" {
		t.Fatalf("unexpected margin defaults: %+v", cfg.Margin)
	}
	if cfg.Security.SimulateRateLimit.MaxAttempts != 60 {
		t.Fatalf("unexpected simulate rate limit: %+v", cfg.Security.SimulateRateLimit)
	}
	if cfg.Queue.DB != 1 || cfg.Redis.DB != 0 || cfg.Queue.Addr() != "127.0.0.1:6379" {
		t.Fatalf("redis endpoints should decode flat: redis=%+v queue=%+v", cfg.Redis.RedisEndpoint, cfg.Queue.RedisEndpoint)
	}
}

func TestLoadFileEnvOverride(t *testing.T) {
	path := writeConfigFile(t, "margin:\n  default_percent: 12\n  pricing_currency: sar\n")
	t.Setenv("MARGIN_DEFAULT_PERCENT", "18.5")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Margin.DefaultPercent != 18.5 {
		t.Fatalf("env override want 18.5 got %v", cfg.Margin.DefaultPercent)
	}
	if cfg.Margin.PricingCurrency != "SAR" {
		t.Fatalf("currency should be upper-cased, got %s", cfg.Margin.PricingCurrency)
	}
}

func TestMarginConfigNormalize(t *testing.T) {
	cfg := MarginConfig{DefaultPercent: 140, PricingCurrency: " ", CacheTTLSeconds: -5}
	cfg.Normalize()
	if cfg.DefaultPercent != 15 || cfg.PricingCurrency != "SAR" || cfg.CacheTTLSeconds != 0 {
		t.Fatalf("unexpected normalized config: %+v", cfg)
	}
}

func TestRedisEndpointAddr(t *testing.T) {
	cases := map[string]RedisEndpoint{
		"127.0.0.1:6379":  {},
		"redis.svc:6380":  {Host: " redis.svc ", Port: 6380},
		"127.0.0.1:16379": {Port: 16379},
	}
	for want, endpoint := range cases {
		if got := endpoint.Addr(); got != want {
			t.Fatalf("addr want %s got %s", want, got)
		}
	}
}
