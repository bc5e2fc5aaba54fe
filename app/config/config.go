package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrMissingAPIKey = errors.New("llm api key is required (DEVKIT_LLM_API_KEY, GEMINI_API_KEY or API_KEY)")

type Config struct {
	Server    HTTPServerConfig `yaml:"server"`
	LLM       LLMConfig        `yaml:"llm"`
	Metrics   MetricsConfig    `yaml:"metrics"`
	RateLimit RateLimitConfig  `yaml:"ratelimit"`
	Log       LogConfig        `yaml:"log"`
}

type HTTPServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

func (c HTTPServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LLMConfig struct {
	Provider   string        `yaml:"provider"`
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	AuthHeader string        `yaml:"auth_header"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`
}

// MetricsConfig enables a separate Prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type RateLimitConfig struct {
	Limit         int           `yaml:"limit"`
	Window        time.Duration `yaml:"window"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Server: HTTPServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  2 * time.Minute,
			WriteTimeout: 2 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:  "gemini",
			MaxTokens: 4000,
			Timeout:   2 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Window: time.Minute,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the optional YAML file at path over the defaults, then applies
// DEVKIT_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
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
	c.Server.Host = getEnv("DEVKIT_SERVER_HOST", c.Server.Host)
	c.LLM.Provider = getEnv("DEVKIT_LLM_PROVIDER", c.LLM.Provider)
	c.LLM.APIKey = getEnv("DEVKIT_LLM_API_KEY", c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = getEnv("GEMINI_API_KEY", os.Getenv("API_KEY"))
	}
	c.LLM.BaseURL = getEnv("DEVKIT_LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("DEVKIT_LLM_MODEL", c.LLM.Model)
	c.LLM.AuthHeader = getEnv("DEVKIT_LLM_AUTH_HEADER", c.LLM.AuthHeader)
	c.Metrics.Addr = getEnv("DEVKIT_METRICS_ADDR", c.Metrics.Addr)
	c.RateLimit.RedisAddr = getEnv("DEVKIT_REDIS_ADDR", c.RateLimit.RedisAddr)
	c.RateLimit.RedisPassword = getEnv("DEVKIT_REDIS_PASSWORD", c.RateLimit.RedisPassword)
	c.Log.Level = getEnv("DEVKIT_LOG_LEVEL", c.Log.Level)

	var err error
	if c.Server.Port, err = getEnvInt("DEVKIT_SERVER_PORT", c.Server.Port); err != nil {
		return err
	}
	if c.LLM.MaxTokens, err = getEnvInt("DEVKIT_LLM_MAX_TOKENS", c.LLM.MaxTokens); err != nil {
		return err
	}
	if c.RateLimit.Limit, err = getEnvInt("DEVKIT_RATELIMIT_LIMIT", c.RateLimit.Limit); err != nil {
		return err
	}
	if c.RateLimit.RedisDB, err = getEnvInt("DEVKIT_REDIS_DB", c.RateLimit.RedisDB); err != nil {
		return err
	}
	if c.LLM.Timeout, err = getEnvDuration("DEVKIT_LLM_TIMEOUT", c.LLM.Timeout); err != nil {
		return err
	}
	if c.RateLimit.Window, err = getEnvDuration("DEVKIT_RATELIMIT_WINDOW", c.RateLimit.Window); err != nil {
		return err
	}
	return nil
}

// Validate checks everything except the API key, which only model-backed
// commands need (see RequireLLM).
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.LLM.Provider {
	case "gemini":
	case "openai":
		// no default model outside Gemini
		if c.LLM.Model == "" {
			return fmt.Errorf("llm model is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("invalid llm timeout %s", c.LLM.Timeout)
	}
	if c.RateLimit.Limit > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("ratelimit window must be positive, got %s", c.RateLimit.Window)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
