// Package config provides YAML-based configuration loading for uda.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Client  ClientConfig  `mapstructure:"client"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Render  RenderConfig  `mapstructure:"render"`
	Server  ServerConfig  `mapstructure:"server"`
	Publish PublishConfig `mapstructure:"publish"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	Rotation    RotationConfig `mapstructure:"rotation"`
	Development bool           `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ClientConfig points the client at a data server gateway.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Codec: json, cbor or proto
	Codec       string `mapstructure:"codec"`
	Concurrency int    `mapstructure:"concurrency"`
}

type CacheConfig struct {
	Enable bool          `mapstructure:"enable"`
	TTL    time.Duration `mapstructure:"ttl"`
	Shards int           `mapstructure:"shards"`
}

// RenderConfig selects and tunes the plot backend.
type RenderConfig struct {
	// Backend: auto, octave or chart
	Backend string `mapstructure:"backend"`
	// Format: png or svg
	Format  string        `mapstructure:"format"`
	Octave  string        `mapstructure:"octave"`
	Timeout time.Duration `mapstructure:"timeout"`
	Width   int           `mapstructure:"width"`
	Height  int           `mapstructure:"height"`
}

type ServerConfig struct {
	// HTTPAddr enables the streamable HTTP transport; empty means stdio.
	HTTPAddr string `mapstructure:"http_addr"`
}

// PublishConfig enables Kafka fetch events.
type PublishConfig struct {
	Enable  bool     `mapstructure:"enable"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/uda.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Client: ClientConfig{
			BaseURL:     "http://localhost:56565",
			Timeout:     30 * time.Second,
			Codec:       "json",
			Concurrency: 4,
		},
		Cache: CacheConfig{Enable: true, TTL: 5 * time.Minute, Shards: 64},
		Render: RenderConfig{
			Backend: "auto",
			Format:  "png",
			Octave:  "octave",
			Timeout: 10 * time.Second,
			Width:   1024,
			Height:  400,
		},
		Publish: PublishConfig{Topic: "uda.fetches"},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment overrides.
// Environment variables use the prefix UDA and `.`/`-` are replaced with `_`.
// Example: UDA_LOG_LEVEL=debug
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("UDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("client.base_url", cfg.Client.BaseURL)
	v.SetDefault("client.timeout", cfg.Client.Timeout)
	v.SetDefault("client.codec", cfg.Client.Codec)
	v.SetDefault("client.concurrency", cfg.Client.Concurrency)
	v.SetDefault("cache.enable", cfg.Cache.Enable)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.shards", cfg.Cache.Shards)
	v.SetDefault("render.backend", cfg.Render.Backend)
	v.SetDefault("render.format", cfg.Render.Format)
	v.SetDefault("render.octave", cfg.Render.Octave)
	v.SetDefault("render.timeout", cfg.Render.Timeout)
	v.SetDefault("render.width", cfg.Render.Width)
	v.SetDefault("render.height", cfg.Render.Height)
	v.SetDefault("server.http_addr", cfg.Server.HTTPAddr)
	v.SetDefault("publish.enable", cfg.Publish.Enable)
	v.SetDefault("publish.brokers", cfg.Publish.Brokers)
	v.SetDefault("publish.topic", cfg.Publish.Topic)

	if path == "" {
		if envPath := os.Getenv("UDA_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("uda")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".uda"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var viperConfigFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &viperConfigFileNotFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}

	c.Client.Codec = strings.ToLower(strings.TrimSpace(c.Client.Codec))
	switch c.Client.Codec {
	case "json", "cbor", "proto":
	default:
		return fmt.Errorf("invalid client.codec: %q", c.Client.Codec)
	}

	c.Render.Backend = strings.ToLower(strings.TrimSpace(c.Render.Backend))
	switch c.Render.Backend {
	case "auto", "octave", "chart":
	default:
		return fmt.Errorf("invalid render.backend: %q", c.Render.Backend)
	}
	c.Render.Format = strings.ToLower(strings.TrimSpace(c.Render.Format))
	if c.Render.Format != "png" && c.Render.Format != "svg" {
		return fmt.Errorf("invalid render.format: %q", c.Render.Format)
	}

	if c.Publish.Enable && (len(c.Publish.Brokers) == 0 || c.Publish.Topic == "") {
		return fmt.Errorf("publish.enable needs publish.brokers and publish.topic")
	}
	return nil
}
