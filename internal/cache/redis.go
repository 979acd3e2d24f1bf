package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gaithtours/margin-engine/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "me"

// keyspace 带统一前缀的 Redis 访问；client 为空表示缓存未启用，所有操作降级为空操作
type keyspace struct {
	client *redis.Client
	prefix string
}

var shared keyspace

// InitRedis 按配置创建共享客户端，未启用时保持降级状态
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		shared = keyspace{}
		return nil
	}
	shared = newKeyspace(redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}), cfg.Prefix)
	return nil
}

func newKeyspace(client *redis.Client, prefix string) keyspace {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return keyspace{client: client, prefix: prefix}
}

// Enabled 缓存是否启用
func Enabled() bool {
	return shared.client != nil
}

// Client 共享客户端，未启用时为 nil
func Client() *redis.Client {
	return shared.client
}

// Ping 检查连通性，未启用时直接返回
func Ping(ctx context.Context) error {
	if shared.client == nil {
		return nil
	}
	return shared.client.Ping(ctx).Err()
}

func (k keyspace) key(name string) string {
	return k.prefix + ":" + strings.TrimSpace(name)
}

// versionedGet 同一往返读取数据键与版本键，版本键缺失视为 0
func (k keyspace) versionedGet(ctx context.Context, name, versionName string) ([]byte, int64, error) {
	if k.client == nil {
		return nil, 0, nil
	}
	pipe := k.client.Pipeline()
	payloadCmd := pipe.Get(ctx, k.key(name))
	versionCmd := pipe.Get(ctx, k.key(versionName))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}
	version, err := versionCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}
	payload, err := payloadCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, nil
	}
	return payload, version, err
}

// setIfVersionScript 仅当版本未变化时写入，KEYS: 数据键, 版本键; ARGV: 版本, 数据, 过期毫秒
var setIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// setIfVersion 版本在读取后被递增时放弃写入，返回是否写入
func (k keyspace) setIfVersion(ctx context.Context, name, versionName string, version int64, payload []byte, ttl time.Duration) (bool, error) {
	if k.client == nil {
		return false, nil
	}
	written, err := setIfVersionScript.Run(ctx, k.client,
		[]string{k.key(name), k.key(versionName)},
		strconv.FormatInt(version, 10), payload, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return written == 1, nil
}

// bumpAndPublish 递增版本、删除数据键并广播，同一事务提交
func (k keyspace) bumpAndPublish(ctx context.Context, name, versionName, channel, message string) (int64, error) {
	if k.client == nil {
		return 0, nil
	}
	var bumped *redis.IntCmd
	_, err := k.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		bumped = pipe.Incr(ctx, k.key(versionName))
		pipe.Del(ctx, k.key(name))
		pipe.Publish(ctx, k.key(channel), message)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return bumped.Val(), nil
}

func (k keyspace) subscribe(ctx context.Context, channel string) *redis.PubSub {
	if k.client == nil {
		return nil
	}
	return k.client.Subscribe(ctx, k.key(channel))
}
