// Package config loads CLI and server settings from .env, an optional YAML
// file and CADBRIDGE_* environment variables, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/cadbridge/internal/logging"
	"github.com/aretw0/cadbridge/pkg/adapters/ole"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/middleware"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit path is given and it exists.
const DefaultFile = "cadbridge.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CADBRIDGE_"

// Config holds application configuration.
type Config struct {
	Host      HostConfig        `yaml:"host"`
	Templates map[string]string `yaml:"templates"`
	Redis     RedisConfig       `yaml:"redis"`
	Breaker   BreakerConfig     `yaml:"breaker"`
	HTTP      HTTPConfig        `yaml:"http"`
	LogLevel  string            `yaml:"log_level"`
	LogFormat string            `yaml:"log_format"`
}

// HostConfig selects the host instance.
type HostConfig struct {
	Name   string `yaml:"name"`
	ProgID string `yaml:"prog_id"`
}

// RedisConfig enables the distributed host lock when Addr is set.
type RedisConfig struct {
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// BreakerConfig tunes the host circuit breaker.
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
	Timeout          time.Duration `yaml:"timeout"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	b := middleware.DefaultBreakerConfig()
	return &Config{
		Host: HostConfig{
			Name:   "default",
			ProgID: ole.DefaultProgID,
		},
		Templates: map[string]string{},
		Redis: RedisConfig{
			Prefix:  "cadbridge:",
			LockTTL: session.DefaultLockTTL,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			FailureThreshold: b.FailureThreshold,
			Timeout:          b.Timeout,
		},
		HTTP:      HTTPConfig{Addr: "127.0.0.1:8080"},
		LogLevel:  "info",
		LogFormat: string(logging.FormatText),
	}
}

// Load builds the configuration. An empty path reads DefaultFile when it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	file, explicit := path, path != ""
	if !explicit {
		file = DefaultFile
	}
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Host.Name, "HOST_NAME")
	setString(&c.Host.ProgID, "PROG_ID")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Prefix, "REDIS_PREFIX")
	setString(&c.HTTP.Addr, "HTTP_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	for _, kind := range []string{"part", "assembly", "drawing"} {
		if v := os.Getenv(EnvPrefix + "TEMPLATE_" + strings.ToUpper(kind)); v != "" {
			c.Templates[kind] = v
		}
	}

	if err := setDuration(&c.Redis.LockTTL, "LOCK_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.Breaker.Timeout, "BREAKER_TIMEOUT"); err != nil {
		return err
	}
	if v := os.Getenv(EnvPrefix + "BREAKER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sBREAKER: %w", EnvPrefix, err)
		}
		c.Breaker.Enabled = b
	}
	if v := os.Getenv(EnvPrefix + "BREAKER_THRESHOLD"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%sBREAKER_THRESHOLD: %w", EnvPrefix, err)
		}
		c.Breaker.FailureThreshold = uint32(n)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = d
	return nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if _, err := c.DocumentTemplates(); err != nil {
		return err
	}
	if _, err := c.Logging(); err != nil {
		return err
	}
	if c.Redis.LockTTL <= 0 {
		return domain.Invalid("redis lock_ttl must be positive, got %s", c.Redis.LockTTL)
	}
	if c.Breaker.Enabled && c.Breaker.FailureThreshold == 0 {
		return domain.Invalid("breaker failure_threshold must be at least 1")
	}
	return nil
}

// DocumentTemplates resolves the template keys ("part", "assembly",
// "drawing") to document types.
func (c *Config) DocumentTemplates() (map[domain.DocumentType]string, error) {
	out := make(map[domain.DocumentType]string, len(c.Templates))
	for name, path := range c.Templates {
		kind, err := domain.ParseDocumentType(name)
		if err != nil {
			return nil, fmt.Errorf("templates: %w", err)
		}
		out[kind] = path
	}
	return out, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, domain.Invalid("log_level %q", c.LogLevel)
	}
	return l, nil
}

// Logging returns the logger options for LogLevel and LogFormat.
func (c *Config) Logging() (logging.Options, error) {
	level, err := c.Level()
	if err != nil {
		return logging.Options{}, err
	}
	switch f := logging.Format(c.LogFormat); f {
	case logging.FormatText, logging.FormatJSON:
		return logging.Options{Level: level, Format: f}, nil
	}
	return logging.Options{}, domain.Invalid("log_format %q, want text or json", c.LogFormat)
}

// BreakerSettings returns the middleware configuration, or nil when the
// breaker is disabled.
func (c *Config) BreakerSettings() *middleware.BreakerConfig {
	if !c.Breaker.Enabled {
		return nil
	}
	b := middleware.DefaultBreakerConfig()
	b.Name = c.Host.Name
	b.FailureThreshold = c.Breaker.FailureThreshold
	if c.Breaker.Timeout > 0 {
		b.Timeout = c.Breaker.Timeout
	}
	return &b
}
