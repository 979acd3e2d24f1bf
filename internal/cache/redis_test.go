package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/margin"
)

func TestInitRedisDisabledDegrades(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("disabled redis should have no client")
	}
	if err := Ping(context.Background()); err != nil {
		t.Fatalf("ping should be a no-op when disabled: %v", err)
	}

	store := NewMarginRuleStore()
	ctx := context.Background()
	if written, err := store.SetActiveRules(ctx, 0, []margin.Rule{{ID: 1}}, time.Minute); written || err != nil {
		t.Fatalf("set should be a no-op, written=%v err=%v", written, err)
	}
	if _, _, hit, err := store.GetActiveRules(ctx); hit || err != nil {
		t.Fatalf("get should miss without error, hit=%v err=%v", hit, err)
	}
	if err := store.InvalidateActiveRules(ctx); err != nil {
		t.Fatalf("invalidate should be a no-op: %v", err)
	}
	store.WatchRuleChanges(ctx, func() { t.Fatalf("no change expected") })
}

func TestKeyspacePrefix(t *testing.T) {
	if got := newKeyspace(nil, "").key(" margin:active_rules "); got != "me:margin:active_rules" {
		t.Fatalf("default prefix key want me:margin:active_rules got %s", got)
	}
	if got := newKeyspace(nil, "stage").key("margin:rules_changed"); got != "stage:margin:rules_changed" {
		t.Fatalf("custom prefix key want stage:margin:rules_changed got %s", got)
	}
}

func TestDecodeActiveRulesRejectsOtherVersion(t *testing.T) {
	raw, err := json.Marshal(activeRulesEntry{Version: 3, Rules: []margin.Rule{{ID: 7, Name: "budget"}}})
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}

	rules, hit, err := decodeActiveRules(raw, 3)
	if err != nil || !hit || len(rules) != 1 || rules[0].ID != 7 {
		t.Fatalf("same version should hit, rules=%+v hit=%v err=%v", rules, hit, err)
	}
	if _, hit, err := decodeActiveRules(raw, 4); hit || err != nil {
		t.Fatalf("entry written before an invalidation must miss, hit=%v err=%v", hit, err)
	}
	if _, hit, err := decodeActiveRules(nil, 0); hit || err != nil {
		t.Fatalf("empty payload should miss, hit=%v err=%v", hit, err)
	}
	if _, _, err := decodeActiveRules([]byte("{"), 0); err == nil {
		t.Fatalf("corrupt payload should surface an error")
	}
}
