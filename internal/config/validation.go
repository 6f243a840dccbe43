package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks settings shared by the web service and the worker.
// Warnings describe insecure but usable values.
func Validate(cfg *Config) ([]string, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	warnings := []string{}
	if cfg.SecretKey == "" {
		return warnings, errors.New("secret_key must not be empty")
	}
	if cfg.SecretKey == DefaultSecretKey {
		warnings = append(warnings, "SECRET_KEY is the insecure default; set it in production")
	}
	if err := validateURL("redis_url", cfg.RedisURL, "redis", "rediss"); err != nil {
		return warnings, err
	}
	if err := validateURL("counter_url", cfg.CounterURL, "redis", "rediss", "bolt"); err != nil {
		return warnings, err
	}
	if err := validateLimits(cfg.Limits); err != nil {
		return warnings, err
	}
	if err := validateShutdown(cfg.Shutdown); err != nil {
		return warnings, err
	}
	if strings.TrimSpace(cfg.Task.Queue) == "" {
		return warnings, errors.New("task.queue must not be empty")
	}
	if cfg.Task.ResultTTLSeconds <= 0 {
		return warnings, errors.New("task.result_ttl_seconds must be > 0")
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return warnings, fmt.Errorf("log.format %q must be json or console", cfg.Log.Format)
	}
	return warnings, nil
}

// ValidateWeb adds the requirements of the HTTP service.
func ValidateWeb(cfg *Config) ([]string, error) {
	warnings, err := Validate(cfg)
	if err != nil {
		return warnings, err
	}
	if strings.TrimSpace(cfg.DBURL) == "" {
		return warnings, errors.New("db_url is required")
	}
	if cfg.ListenAddr == "" {
		return warnings, errors.New("listen_addr must not be empty")
	}
	return warnings, nil
}

// ValidateWorker adds the requirements of the task worker.
func ValidateWorker(cfg *Config) ([]string, error) {
	warnings, err := Validate(cfg)
	if err != nil {
		return warnings, err
	}
	if cfg.Worker.Concurrency <= 0 {
		return warnings, errors.New("worker.concurrency must be > 0")
	}
	return warnings, nil
}

func validateURL(name, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, scheme := range schemes {
		if parsed.Scheme == scheme {
			return nil
		}
	}
	return fmt.Errorf("%s scheme %q not supported", name, parsed.Scheme)
}

func validateLimits(cfg LimitsConfig) error {
	if cfg.MaxBodyBytes <= 0 {
		return errors.New("limits.max_body_bytes must be > 0")
	}
	if cfg.ReadHeaderTimeoutMS <= 0 {
		return errors.New("limits.read_header_timeout_ms must be > 0")
	}
	if cfg.ReadTimeoutMS < 0 || cfg.WriteTimeoutMS < 0 || cfg.IdleTimeoutMS < 0 {
		return errors.New("limits timeouts must be non-negative")
	}
	return nil
}

func validateShutdown(cfg ShutdownConfig) error {
	if cfg.DrainMS < 0 {
		return errors.New("shutdown.drain_ms must be non-negative")
	}
	if cfg.GracefulTimeoutMS < 0 {
		return errors.New("shutdown.graceful_timeout_ms must be non-negative")
	}
	if cfg.ForceCloseMS < 0 {
		return errors.New("shutdown.force_close_ms must be non-negative")
	}
	return nil
}
