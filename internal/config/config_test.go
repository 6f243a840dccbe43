package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestLoadDefaults() {
	cfg, err := Load("")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), DefaultRedisURL, cfg.RedisURL)
	assert.Equal(s.T(), DefaultRedisURL, cfg.CounterURL, "counter falls back to redis url")
	assert.Equal(s.T(), DefaultSecretKey, cfg.SecretKey)
	assert.Equal(s.T(), DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(s.T(), "info", cfg.Log.Level)
	assert.Equal(s.T(), "json", cfg.Log.Format)
	assert.Equal(s.T(), int64(1<<20), cfg.Limits.MaxBodyBytes)
	assert.Equal(s.T(), 5000, cfg.Shutdown.GracefulTimeoutMS)
	assert.Equal(s.T(), DefaultTaskQueue, cfg.Task.Queue)
	assert.Equal(s.T(), 86400, cfg.Task.ResultTTLSeconds)
	assert.Equal(s.T(), 10, cfg.Worker.Concurrency)
	assert.Empty(s.T(), cfg.Worker.MetricsAddr)
}

func (s *ConfigTestSuite) TestEnvironmentOverrides() {
	t := s.T()
	t.Setenv("DB_URL", "postgres://app:app@db:5432/app")
	t.Setenv("REDIS_URL", "redis://cache:6380/1")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_GRACEFUL_TIMEOUT_MS", "750")
	t.Setenv("TASK_RESULT_TTL_SECONDS", "60")
	t.Setenv("WORKER_CONCURRENCY", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:app@db:5432/app", cfg.DBURL)
	assert.Equal(t, "redis://cache:6380/1", cfg.RedisURL)
	assert.Equal(t, "redis://cache:6380/1", cfg.CounterURL)
	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 750, cfg.Shutdown.GracefulTimeoutMS)
	assert.Equal(t, 60, cfg.Task.ResultTTLSeconds)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
}

func (s *ConfigTestSuite) TestCounterURLOverride() {
	s.T().Setenv("COUNTER_URL", "bolt:///var/lib/webstack/counter.db")

	cfg, err := Load("")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "bolt:///var/lib/webstack/counter.db", cfg.CounterURL)
	assert.Equal(s.T(), DefaultRedisURL, cfg.RedisURL)
}

func (s *ConfigTestSuite) TestLoadFileThenEnv() {
	t := s.T()
	path := filepath.Join(t.TempDir(), "webstack.yaml")
	content := `
db_url: "file:/tmp/visits.db"
listen_addr: "127.0.0.1:9999"
log:
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("LISTEN_ADDR", "127.0.0.1:7777")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file:/tmp/visits.db", cfg.DBURL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:7777", cfg.ListenAddr, "env wins over file")
}

func (s *ConfigTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(s.T().TempDir(), "missing.yaml"))
	assert.Error(s.T(), err)
}

func TestValidateWarnsOnDefaultSecret(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "SECRET_KEY")
}

func TestValidateWebRequiresDBURL(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	_, err = ValidateWeb(cfg)
	require.Error(t, err)

	cfg.DBURL = "postgres://localhost/app"
	_, err = ValidateWeb(cfg)
	require.NoError(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"redis scheme":   func(c *Config) { c.RedisURL = "http://cache:6379" },
		"counter scheme": func(c *Config) { c.CounterURL = "memcached://cache" },
		"body limit":     func(c *Config) { c.Limits.MaxBodyBytes = 0 },
		"drain":          func(c *Config) { c.Shutdown.DrainMS = -1 },
		"queue":          func(c *Config) { c.Task.Queue = " " },
		"ttl":            func(c *Config) { c.Task.ResultTTLSeconds = 0 },
		"log format":     func(c *Config) { c.Log.Format = "xml" },
		"empty secret":   func(c *Config) { c.SecretKey = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			mutate(cfg)
			_, err = Validate(cfg)
			assert.Error(t, err)
		})
	}
}

func TestValidateWorkerConcurrency(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Worker.Concurrency = 0

	_, err = ValidateWorker(cfg)
	assert.Error(t, err)
}

func TestPathFromArgs(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"--config", "webstack.yaml"}, "webstack.yaml"},
		{[]string{"--config=/etc/webstack.yaml"}, "/etc/webstack.yaml"},
		{[]string{"-c", "local.yaml"}, "local.yaml"},
	}
	for _, tc := range cases {
		got, err := PathFromArgs("web", tc.args)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := PathFromArgs("web", []string{"--unknown"})
	assert.Error(t, err)
}
