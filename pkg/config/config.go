package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helmcode/neuropath/pkg/llm"
)

// Config holds relay settings. Values come from an optional YAML file and
// are then overridden by environment variables.
type Config struct {
	APIKey          string        `yaml:"api_key"`
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	UpstreamURL     string        `yaml:"upstream_url"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	ListenAddr      string        `yaml:"listen_addr"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
}

func Default() Config {
	return Config{
		Provider:        string(llm.ProviderGateway),
		UpstreamTimeout: 60 * time.Second,
		ListenAddr:      ":8080",
		RateLimitBurst:  5,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load reads path (if non-empty), applies the environment and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIKey = getenv("NEUROPATH_API_KEY", getenv("LOVABLE_API_KEY", c.APIKey))
	c.Provider = getenv("NEUROPATH_PROVIDER", c.Provider)
	c.Model = getenv("NEUROPATH_MODEL", c.Model)
	c.UpstreamURL = getenv("NEUROPATH_UPSTREAM_URL", c.UpstreamURL)
	c.UpstreamTimeout = getenvDuration("NEUROPATH_UPSTREAM_TIMEOUT", c.UpstreamTimeout)
	c.ListenAddr = getenv("NEUROPATH_LISTEN_ADDR", c.ListenAddr)
	c.RateLimitRPS = getenvFloat("NEUROPATH_RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = getenvInt("NEUROPATH_RATE_LIMIT_BURST", c.RateLimitBurst)
	c.LogLevel = getenv("NEUROPATH_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("NEUROPATH_LOG_FORMAT", c.LogFormat)
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("NEUROPATH_API_KEY (or LOVABLE_API_KEY) is not configured")
	}
	if _, err := llm.ParseProvider(c.Provider); err != nil {
		return err
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit rps must not be negative, got %v", c.RateLimitRPS)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log format %q (supported: json, console)", c.LogFormat)
	}
	return nil
}

// LLMSettings converts the upstream part of the config.
func (c Config) LLMSettings() llm.Settings {
	p, _ := llm.ParseProvider(c.Provider)
	return llm.Settings{
		Provider: p,
		APIKey:   c.APIKey,
		BaseURL:  c.UpstreamURL,
		Model:    c.Model,
		Timeout:  c.UpstreamTimeout,
	}
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		fmt.Fprintf(os.Stderr, "invalid integer for %s: %q\n", key, v)
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
		fmt.Fprintf(os.Stderr, "invalid number for %s: %q\n", key, v)
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err == nil {
			return parsed
		}
		fmt.Fprintf(os.Stderr, "invalid duration for %s: %v\n", key, err)
	}
	return def
}
