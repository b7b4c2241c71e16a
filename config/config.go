// Package config loads svctable settings.
//
// Values are layered: built-in defaults, then a YAML file, then .env files,
// then SVCTABLE_* environment variables. A missing YAML file or .env file is
// not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/svctable/intercept"
)

// Environment selects the logger preset.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the full svctable configuration.
type Config struct {
	Environment Environment     `yaml:"environment"`
	LogLevel    string          `yaml:"log_level"`
	Proxy       ProxyConfig     `yaml:"proxy"`
	Intercept   intercept.Rules `yaml:"intercept"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}

// ProxyConfig controls proxy type memoization.
type ProxyConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Environment: Production,
		LogLevel:    "info",
		Proxy:       ProxyConfig{CacheSize: 256},
		Metrics:     MetricsConfig{Namespace: "svctable"},
	}
}

// Load reads path (optional, "" skips it) and envFiles, then applies
// SVCTABLE_* overrides from the process environment. Variables already set in
// the process take precedence over .env files.
func Load(path string, envFiles ...string) (Config, error) {
	return load(path, envFiles, os.LookupEnv)
}

func load(path string, envFiles []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
			}
		}
	}

	dotenv := map[string]string{}
	for _, f := range envFiles {
		vals, err := godotenv.Read(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("reading env file %s: %w", f, err)
		}
		for k, v := range vals {
			dotenv[k] = v
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(get); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(get func(string) (string, bool)) error {
	if v, ok := get("SVCTABLE_ENVIRONMENT"); ok {
		c.Environment = Environment(strings.ToLower(v))
	}
	if v, ok := get("SVCTABLE_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("SVCTABLE_PROXY_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SVCTABLE_PROXY_CACHE_SIZE: %w", err)
		}
		c.Proxy.CacheSize = n
	}
	if v, ok := get("SVCTABLE_INTERCEPT_INCLUDE"); ok {
		c.Intercept.Include = splitList(v)
	}
	if v, ok := get("SVCTABLE_INTERCEPT_EXCLUDE"); ok {
		c.Intercept.Exclude = splitList(v)
	}
	if v, ok := get("SVCTABLE_METRICS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SVCTABLE_METRICS_ENABLED: %w", err)
		}
		c.Metrics.Enabled = b
	}
	if v, ok := get("SVCTABLE_METRICS_NAMESPACE"); ok {
		c.Metrics.Namespace = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Environment {
	case Development, Production:
	default:
		return fmt.Errorf("config: unknown environment %q", c.Environment)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if c.Proxy.CacheSize <= 0 {
		return fmt.Errorf("config: proxy.cache_size must be positive, got %d", c.Proxy.CacheSize)
	}
	if _, err := intercept.New(c.Intercept); err != nil {
		return fmt.Errorf("config: intercept: %w", err)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.New("config: metrics.namespace is required when metrics are enabled")
	}
	return nil
}

// Interception reports whether any include rule is configured.
func (c Config) Interception() bool { return len(c.Intercept.Include) > 0 }

// Logger builds a zap logger for the configured environment and level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Environment == Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
