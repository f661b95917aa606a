package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Bridge    BridgeConfig
	Report    ReportConfig
	Platform  PlatformConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8090"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// BridgeConfig holds host-bridge configuration. ReplyDeadline bounds the
// single request/reply intent at the HTTP layer; zero leaves the wait
// unbounded, matching the host contract.
type BridgeConfig struct {
	ReplyDeadline time.Duration `envconfig:"BRIDGE_REPLY_DEADLINE" default:"0"`
}

// ReportConfig holds breakage-report forwarding configuration.
type ReportConfig struct {
	Endpoint string `envconfig:"REPORT_ENDPOINT" default:""`
	Enabled  bool   `envconfig:"REPORT_ENABLED" default:"false"`
}

// PlatformConfig identifies the host platform and an optional capability
// matrix override file.
type PlatformConfig struct {
	Name             string `envconfig:"PLATFORM" default:"extension"`
	CapabilitiesFile string `envconfig:"PLATFORM_CAPABILITIES_FILE" default:""`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8090",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Platform: PlatformConfig{
			Name: "extension",
		},
	}
}
