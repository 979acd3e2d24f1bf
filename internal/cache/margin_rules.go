package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/margin"
)

const (
	marginRuleChangedChannel = "margin:rules_changed"
	activeRulesVersionKey    = constants.CacheKeyActiveMarginRules + ":version"
)

// MarginRuleStore 启用规则快照的跨实例共享缓存与变更广播。
// 每次失效递增版本号，缓存内容携带写入时的版本，版本不一致即视为未命中
type MarginRuleStore struct {
	ks keyspace
}

type activeRulesEntry struct {
	Version int64         `json:"version"`
	Rules   []margin.Rule `json:"rules"`
}

// NewMarginRuleStore 基于共享客户端创建，需在 InitRedis 之后调用
func NewMarginRuleStore() *MarginRuleStore {
	return &MarginRuleStore{ks: shared}
}

// GetActiveRules 读取缓存的启用规则，同时返回当前版本供回填时比对
func (s *MarginRuleStore) GetActiveRules(ctx context.Context) ([]margin.Rule, int64, bool, error) {
	raw, version, err := s.ks.versionedGet(ctx, constants.CacheKeyActiveMarginRules, activeRulesVersionKey)
	if err != nil {
		return nil, 0, false, err
	}
	rules, hit, err := decodeActiveRules(raw, version)
	return rules, version, hit, err
}

// SetActiveRules 仅当版本仍为 version 时写入；读取后发生过失效则放弃，返回是否写入
func (s *MarginRuleStore) SetActiveRules(ctx context.Context, version int64, rules []margin.Rule, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	payload, err := json.Marshal(activeRulesEntry{Version: version, Rules: rules})
	if err != nil {
		return false, err
	}
	return s.ks.setIfVersion(ctx, constants.CacheKeyActiveMarginRules, activeRulesVersionKey, version, payload, ttl)
}

// InvalidateActiveRules 递增版本、删除缓存并通知其他实例重建
func (s *MarginRuleStore) InvalidateActiveRules(ctx context.Context) error {
	stamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	_, err := s.ks.bumpAndPublish(ctx, constants.CacheKeyActiveMarginRules, activeRulesVersionKey, marginRuleChangedChannel, stamp)
	return err
}

func decodeActiveRules(raw []byte, version int64) ([]margin.Rule, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	var entry activeRulesEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, err
	}
	if entry.Version != version {
		return nil, false, nil
	}
	return entry.Rules, true, nil
}

// WatchRuleChanges 后台监听变更通知，ctx 结束时退出；缓存未启用时不做任何事
func (s *MarginRuleStore) WatchRuleChanges(ctx context.Context, onChange func()) {
	sub := s.ks.subscribe(ctx, marginRuleChangedChannel)
	if sub == nil {
		return
	}
	go func() {
		defer func() {
			if err := sub.Close(); err != nil {
				logger.Warnw("margin_rule_watch_close_failed", "error", err)
			}
		}()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				onChange()
			}
		}
	}()
}
