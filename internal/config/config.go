package config

import (
	"fmt"
	"time"

	"habitpulse/pkg/circuitbreaker"
	"habitpulse/pkg/config"
)

type CacheConfig struct {
	TTL              string `yaml:"ttl"`
	FailureThreshold int    `yaml:"failure_threshold"`
	SuccessThreshold int    `yaml:"success_threshold"`
	OpenTimeout      string `yaml:"open_timeout"`
}

type AnalyticsConfig struct {
	// IANA zone used to decide what "today" is.
	Timezone string `yaml:"timezone"`
}

type WorkerConfig struct {
	MaxRetries       int64  `yaml:"max_retries"`
	DedupTTL         string `yaml:"dedup_ttl"`
	SnapshotInterval string `yaml:"snapshot_interval"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	DB        config.DBConfig     `yaml:"db"`
	MQ        config.MQConfig     `yaml:"mq"`
	Redis     config.RedisConfig  `yaml:"redis"`
	JWT       config.JWTConfig    `yaml:"jwt"`
	Server    config.ServerConfig `yaml:"server"`
	Otel      config.OtelConfig   `yaml:"otel"`
	Logger    LoggerConfig        `yaml:"logger"`
	Cache     CacheConfig         `yaml:"cache"`
	Analytics AnalyticsConfig     `yaml:"analytics"`
	Worker    WorkerConfig        `yaml:"worker"`
}

// Load 使用统一配置中心加载配置，环境变量优先级最高
func Load() (*Config, error) {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")
	return LoadFrom(env, configDir)
}

func LoadFrom(env, configDir string) (*Config, error) {
	var cfg Config
	if err := config.Decode(env, configDir, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideOtelFromEnv(&cfg.Otel)
	if tz := config.GetEnv("ANALYTICS_TIMEZONE", ""); tz != "" {
		cfg.Analytics.Timezone = tz
	}
	if level := config.GetEnv("LOG_LEVEL", ""); level != "" {
		cfg.Logger.Level = level
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the analytics timezone; empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Analytics.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics.timezone %q: %w", c.Analytics.Timezone, err)
	}
	return loc, nil
}

func (c *Config) CacheTTL() time.Duration {
	return config.ParseDuration(c.Cache.TTL, 5*time.Minute)
}

func (c *Config) BreakerConfig() circuitbreaker.Config {
	cb := circuitbreaker.DefaultConfig()
	if c.Cache.FailureThreshold > 0 {
		cb.FailureThreshold = c.Cache.FailureThreshold
	}
	if c.Cache.SuccessThreshold > 0 {
		cb.SuccessThreshold = c.Cache.SuccessThreshold
	}
	cb.Timeout = config.ParseDuration(c.Cache.OpenTimeout, cb.Timeout)
	return cb
}

func (c *Config) DedupTTL() time.Duration {
	return config.ParseDuration(c.Worker.DedupTTL, time.Hour)
}

func (c *Config) SnapshotInterval() time.Duration {
	return config.ParseDuration(c.Worker.SnapshotInterval, time.Hour)
}

// ListenAddr 返回 HTTP 监听地址，默认 :8080
func (c *Config) ListenAddr() string {
	if c.Server.Port == "" {
		return ":8080"
	}
	return ":" + c.Server.Port
}
