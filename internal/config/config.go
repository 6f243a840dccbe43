package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultRedisURL   = "redis://redis:6379/0"
	DefaultSecretKey  = "dev"
	DefaultListenAddr = "0.0.0.0:8000"
	DefaultTaskQueue  = "default"
)

// Config is read by viper from environment variables and, optionally, a
// config file. Nested keys map to underscore-joined variables, so
// shutdown.graceful_timeout_ms is SHUTDOWN_GRACEFUL_TIMEOUT_MS.
type Config struct {
	DBURL      string `mapstructure:"db_url"`
	RedisURL   string `mapstructure:"redis_url"`
	CounterURL string `mapstructure:"counter_url"`
	SecretKey  string `mapstructure:"secret_key"`
	ListenAddr string `mapstructure:"listen_addr"`
	SentryDSN  string `mapstructure:"sentry_dsn"`

	Log      LogConfig      `mapstructure:"log"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
	Task     TaskConfig     `mapstructure:"task"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

type LimitsConfig struct {
	MaxBodyBytes        int64 `mapstructure:"max_body_bytes"`
	ReadHeaderTimeoutMS int   `mapstructure:"read_header_timeout_ms"`
	ReadTimeoutMS       int   `mapstructure:"read_timeout_ms"`
	WriteTimeoutMS      int   `mapstructure:"write_timeout_ms"`
	IdleTimeoutMS       int   `mapstructure:"idle_timeout_ms"`
}

type ShutdownConfig struct {
	DrainMS           int `mapstructure:"drain_ms"`
	GracefulTimeoutMS int `mapstructure:"graceful_timeout_ms"`
	ForceCloseMS      int `mapstructure:"force_close_ms"`
}

type TaskConfig struct {
	Queue            string `mapstructure:"queue"`
	ResultTTLSeconds int    `mapstructure:"result_ttl_seconds"`
}

type WorkerConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	HealthAddr  string `mapstructure:"health_addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Load reads configuration from the environment. When path is non-empty the
// file is read first and environment variables override it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.CounterURL == "" {
		cfg.CounterURL = cfg.RedisURL
	}
	return &cfg, nil
}

// Every key needs a default, otherwise AutomaticEnv does not surface it
// through Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("db_url", "")
	v.SetDefault("redis_url", DefaultRedisURL)
	v.SetDefault("counter_url", "")
	v.SetDefault("secret_key", DefaultSecretKey)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("sentry_dsn", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("limits.max_body_bytes", 1<<20)
	v.SetDefault("limits.read_header_timeout_ms", 2000)
	v.SetDefault("limits.read_timeout_ms", 0)
	v.SetDefault("limits.write_timeout_ms", 0)
	v.SetDefault("limits.idle_timeout_ms", 30000)

	v.SetDefault("shutdown.drain_ms", 0)
	v.SetDefault("shutdown.graceful_timeout_ms", 5000)
	v.SetDefault("shutdown.force_close_ms", 2000)

	v.SetDefault("task.queue", DefaultTaskQueue)
	v.SetDefault("task.result_ttl_seconds", 86400)

	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.health_addr", "0.0.0.0:9090")
	v.SetDefault("worker.metrics_addr", "")
}
