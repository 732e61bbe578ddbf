package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/auctionhouse/go/internal/bidding"
	"github.com/mcdev12/auctionhouse/go/internal/bus"
	"github.com/mcdev12/auctionhouse/go/internal/outbox"
	"github.com/mcdev12/auctionhouse/go/internal/realtime"
)

// Config mirrors config.yaml. Durations are strings parsed with
// time.ParseDuration; invalid values fall back to defaults.
type Config struct {
	Server struct {
		Port            string `yaml:"port"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Outbox struct {
		PollInterval  string `yaml:"poll_interval"`
		BatchSize     int32  `yaml:"batch_size"`
		MaxAttempts   *int32 `yaml:"max_attempts"`
		ListenChannel string `yaml:"listen_channel"`
	} `yaml:"outbox"`

	Closer struct {
		Interval  string `yaml:"interval"`
		BatchSize int32  `yaml:"batch_size"`
	} `yaml:"closer"`

	Realtime struct {
		WriteTimeout   string `yaml:"write_timeout"`
		ReadTimeout    string `yaml:"read_timeout"`
		PingInterval   string `yaml:"ping_interval"`
		MaxMessageSize int64  `yaml:"max_message_size"`
		SendBufferSize int    `yaml:"send_buffer_size"`
	} `yaml:"realtime"`

	NATS struct {
		URL           string `yaml:"url"`
		Stream        string `yaml:"stream"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	Metrics struct {
		OTLPEndpoint string `yaml:"otlp_endpoint"`
	} `yaml:"metrics"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// loadConfig reads path if it exists and applies environment overrides.
func loadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", path).Msg("config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.applyEnv()
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.Metrics.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Metrics.OTLPEndpoint)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	if v, err := strconv.ParseBool(os.Getenv("LOG_PRETTY")); err == nil {
		c.Log.Pretty = v
	}
	if v := os.Getenv("OUTBOX_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			attempts := int32(n)
			c.Outbox.MaxAttempts = &attempts
		}
	}
}

func (c *Config) outboxConfig() outbox.Config {
	cfg := outbox.DefaultConfig()
	cfg.PollInterval = parseDuration(c.Outbox.PollInterval, cfg.PollInterval)
	if c.Outbox.BatchSize > 0 {
		cfg.BatchSize = c.Outbox.BatchSize
	}
	if c.Outbox.MaxAttempts != nil {
		cfg.MaxAttempts = *c.Outbox.MaxAttempts
	}
	return cfg
}

func (c *Config) listenerConfig(databaseURL string) outbox.ListenerConfig {
	cfg := outbox.DefaultListenerConfig()
	cfg.DatabaseURL = databaseURL
	if c.Outbox.ListenChannel != "" {
		cfg.NotifyChannel = c.Outbox.ListenChannel
	}
	return cfg
}

func (c *Config) closerConfig() bidding.CloserConfig {
	cfg := bidding.DefaultCloserConfig()
	cfg.Interval = parseDuration(c.Closer.Interval, cfg.Interval)
	if c.Closer.BatchSize > 0 {
		cfg.BatchSize = c.Closer.BatchSize
	}
	return cfg
}

func (c *Config) connectionConfig() realtime.ConnectionConfig {
	cfg := realtime.DefaultConnectionConfig()
	cfg.WriteTimeout = parseDuration(c.Realtime.WriteTimeout, cfg.WriteTimeout)
	cfg.ReadTimeout = parseDuration(c.Realtime.ReadTimeout, cfg.ReadTimeout)
	cfg.PingInterval = parseDuration(c.Realtime.PingInterval, cfg.PingInterval)
	if c.Realtime.MaxMessageSize > 0 {
		cfg.MaxMessageSize = c.Realtime.MaxMessageSize
	}
	if c.Realtime.SendBufferSize > 0 {
		cfg.SendBufferSize = c.Realtime.SendBufferSize
	}
	return cfg
}

func (c *Config) jetStreamConfig() bus.JetStreamConfig {
	cfg := bus.DefaultJetStreamConfig()
	cfg.URL = c.NATS.URL
	if c.NATS.Stream != "" {
		cfg.StreamName = c.NATS.Stream
	}
	if c.NATS.SubjectPrefix != "" {
		cfg.SubjectPrefix = c.NATS.SubjectPrefix
	}
	return cfg
}

func (c *Config) shutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Str("value", value).Dur("default", fallback).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
