package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/gaithtours/margin-engine/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Queue       QueueConfig       `mapstructure:"queue"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Security    SecurityConfig    `mapstructure:"security"`
	Margin      MarginConfig      `mapstructure:"margin"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	ServiceAuth ServiceAuthConfig `mapstructure:"service_auth"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Console:    c.Console,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"`  // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`     // 数据库连接串
	SQLLog bool               `mapstructure:"sql_log"` // 是否输出 SQL 日志
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 管理端 JWT 配置（令牌由统一认证服务签发，本服务只校验）
type JWTConfig struct {
	SecretKey string `mapstructure:"secret"`
	Issuer    string `mapstructure:"issuer"`
}

// RedisEndpoint 缓存与队列共用的 Redis 连接参数
type RedisEndpoint struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr host:port，缺省 127.0.0.1:6379
func (e RedisEndpoint) Addr() string {
	host := strings.TrimSpace(e.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := e.Port
	if port <= 0 {
		port = 6379
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// RedisConfig 规则缓存、失效广播与限流
type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Prefix        string `mapstructure:"prefix"`
	RedisEndpoint `mapstructure:",squash"`
}

// QueueConfig asynq 队列，通常与缓存使用不同 DB
type QueueConfig struct {
	Enabled       bool           `mapstructure:"enabled"`
	Concurrency   int            `mapstructure:"concurrency"`
	Queues        map[string]int `mapstructure:"queues"`
	RedisEndpoint `mapstructure:",squash"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	SimulateRateLimit RateLimitConfig `mapstructure:"simulate_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// MarginConfig 利润引擎配置
type MarginConfig struct {
	DefaultPercent  float64 `mapstructure:"default_percent"`   // 无规则命中时的默认利润率
	PricingCurrency string  `mapstructure:"pricing_currency"`  // 报价币种
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds"` // 启用规则快照缓存时长
}

// CatalogConfig 国家城市目录配置
type CatalogConfig struct {
	File string `mapstructure:"file"` // YAML 目录文件
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ServiceAuthConfig 预订链路服务间调用鉴权
type ServiceAuthConfig struct {
	Tokens []string `mapstructure:"tokens"`
}

// configFileEnv 显式指定配置文件路径的环境变量
const configFileEnv = "MARGIN_CONFIG"

// Load 加载配置：config.yml < 环境变量（键中 . 换成 _，如 MARGIN_DEFAULT_PERCENT）
// 配置文件缺失时使用环境变量与默认值，解析失败直接退出
func Load() *Config {
	cfg, err := LoadFile(os.Getenv(configFileEnv))
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(err)
	}
	return cfg
}

// LoadFile 从指定文件加载配置，path 为空时在常用目录中查找 config.yml
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range []string{".", "./etc", ".."} {
			v.AddConfigPath(dir)
		}
	}
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Margin.Normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "")
	v.SetDefault("log.console", false)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "margin-engine.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/margin.db")
	v.SetDefault("database.sql_log", false)
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "me")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Accept-Language",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Service-Token",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.simulate_rate_limit.window_seconds", 60)
	v.SetDefault("security.simulate_rate_limit.max_attempts", 60)
	v.SetDefault("margin.default_percent", 15)
	v.SetDefault("margin.pricing_currency", "SAR")
	v.SetDefault("margin.cache_ttl_seconds", 60)
	v.SetDefault("catalog.file", "./catalog.yml")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "margin-engine")
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("service_auth.tokens", []string{})
}

// Normalize 规范化利润配置，非法值回退默认
func (c *MarginConfig) Normalize() {
	if c.DefaultPercent < 0 || c.DefaultPercent > 100 {
		logger.Warnw("margin_default_percent_invalid", "value", c.DefaultPercent, "fallback", 15)
		c.DefaultPercent = 15
	}
	c.PricingCurrency = strings.ToUpper(strings.TrimSpace(c.PricingCurrency))
	if c.PricingCurrency == "" {
		c.PricingCurrency = "SAR"
	}
	if c.CacheTTLSeconds < 0 {
		c.CacheTTLSeconds = 0
	}
}
