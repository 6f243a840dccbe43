package runtime

import (
	"fmt"
	"time"

	"webstack/internal/config"
)

const (
	defaultGracefulTimeout = 5 * time.Second
	defaultForceClose      = 2 * time.Second
)

// ShutdownConfig orders the stop sequence: listeners close, Drain elapses,
// in-flight requests get GracefulTimeout, and ForceClose is the last grace
// before remaining connections are cut.
type ShutdownConfig struct {
	Drain           time.Duration
	GracefulTimeout time.Duration
	ForceClose      time.Duration
}

// ShutdownFromConfig converts millisecond settings. Zero means the default;
// Drain has none and stays off.
func ShutdownFromConfig(cfg config.ShutdownConfig) (ShutdownConfig, error) {
	var (
		out ShutdownConfig
		err error
	)
	if out.Drain, err = millis("drain_ms", cfg.DrainMS); err != nil {
		return ShutdownConfig{}, err
	}
	if out.GracefulTimeout, err = millis("graceful_timeout_ms", cfg.GracefulTimeoutMS); err != nil {
		return ShutdownConfig{}, err
	}
	if out.ForceClose, err = millis("force_close_ms", cfg.ForceCloseMS); err != nil {
		return ShutdownConfig{}, err
	}
	return ApplyShutdownDefaults(out), nil
}

func millis(name string, ms int) (time.Duration, error) {
	if ms < 0 {
		return 0, fmt.Errorf("%s must be non-negative", name)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// ApplyShutdownDefaults fills unset timeouts.
func ApplyShutdownDefaults(cfg ShutdownConfig) ShutdownConfig {
	if cfg.Drain < 0 {
		cfg.Drain = 0
	}
	if cfg.GracefulTimeout <= 0 {
		cfg.GracefulTimeout = defaultGracefulTimeout
	}
	if cfg.ForceClose <= 0 {
		cfg.ForceClose = defaultForceClose
	}
	return cfg
}
