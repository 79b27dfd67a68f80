// Package config defines the server configuration structure.
package config

import (
	"errors"
	"net"
	"time"
)

// ServerConfig is the root configuration for framekv-server.
type ServerConfig struct {
	Listen  ListenSection  `koanf:"listen"`
	Limits  LimitsSection  `koanf:"limits"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ListenSection configures the client listener.
type ListenSection struct {
	// Addr is the TCP address the server accepts clients on.
	Addr string `koanf:"addr"`
}

// LimitsSection configures per-connection protections.
type LimitsSection struct {
	// ReadTimeout bounds reading a single command once its first byte
	// has arrived. Helps against slowloris clients.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout bounds the gap between commands on an idle connection.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RateLimit is the maximum commands per second per client IP.
	// Zero disables rate limiting.
	RateLimit int `koanf:"rate_limit"`
}

// MetricsSection configures the metrics endpoint.
type MetricsSection struct {
	// Enabled turns on the Prometheus endpoint.
	Enabled bool `koanf:"enabled"`

	// Addr is the HTTP address for /metrics.
	Addr string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default configuration values.
const (
	DefaultListenAddr  = "127.0.0.1:6379"
	DefaultMetricsAddr = "127.0.0.1:9121"

	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute
	DefaultRateLimit    = 1000

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Listen: ListenSection{
			Addr: DefaultListenAddr,
		},
		Limits: LimitsSection{
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
			RateLimit:    DefaultRateLimit,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if cfg.Listen.Addr == "" {
		return errors.New("listen.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Listen.Addr); err != nil {
		return errors.New("listen.addr is not a valid host:port: " + err.Error())
	}
	if cfg.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
			return errors.New("metrics.addr is not a valid host:port: " + err.Error())
		}
	}
	if cfg.Limits.RateLimit < 0 {
		return errors.New("limits.rate_limit must not be negative")
	}
	if cfg.Limits.ReadTimeout < 0 || cfg.Limits.WriteTimeout < 0 || cfg.Limits.IdleTimeout < 0 {
		return errors.New("limits timeouts must not be negative")
	}
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.New("log.level must be one of debug, info, warn, error")
	}
	return nil
}
