// control/config.go
// Author: momentics <momentics@gmail.com>
//
// File-based client configuration.

package control

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config is the on-disk client configuration.
type Config struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"` // default per-request timeout

	SecureChannel SecureChannelConfig `yaml:"secureChannel"`
	Transport     TransportConfig     `yaml:"transport"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	LogLevel      string              `yaml:"logLevel"`
}

// SecureChannelConfig controls security token lifetime.
type SecureChannelConfig struct {
	Lifetime time.Duration `yaml:"lifetime"` // requested token lifetime
}

// TransportConfig tunes the WebSocket transport.
type TransportConfig struct {
	InboxSize        int           `yaml:"inboxSize"`
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout"`
	WriteTimeout     time.Duration `yaml:"writeTimeout"`
	UserTimeout      time.Duration `yaml:"userTimeout"` // TCP_USER_TIMEOUT, linux only
	Subprotocol      string        `yaml:"subprotocol"`
}

// MetricsConfig controls prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Listen    string `yaml:"listen"`
}

// LoadConfig reads file and applies defaults.
func LoadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes and applies defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "ws://localhost:4840/ua"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.SecureChannel.Lifetime == 0 {
		cfg.SecureChannel.Lifetime = 10 * time.Minute
	}
	if cfg.Transport.InboxSize == 0 {
		cfg.Transport.InboxSize = 1024
	}
	if cfg.Transport.HandshakeTimeout == 0 {
		cfg.Transport.HandshakeTimeout = 10 * time.Second
	}
	if cfg.Transport.WriteTimeout == 0 {
		cfg.Transport.WriteTimeout = 5 * time.Second
	}
	if cfg.Transport.Subprotocol == "" {
		cfg.Transport.Subprotocol = "opcua+uajson"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "hioload_ua"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", c.Timeout)
	}
	if c.SecureChannel.Lifetime < time.Second {
		return fmt.Errorf("secureChannel.lifetime too short: %v", c.SecureChannel.Lifetime)
	}
	if c.Transport.InboxSize < 0 {
		return fmt.Errorf("transport.inboxSize must not be negative: %d", c.Transport.InboxSize)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("logLevel: %w", err)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
