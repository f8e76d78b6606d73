// Package config provides unified configuration loading for apibridge:
// defaults, optional YAML file, environment override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete apibridge configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// APIConfig describes the remote API the bridge fronts.
type APIConfig struct {
	// Base URL of the remote service.
	BaseURL string `yaml:"base_url"`
	// Login endpoint exchanged for a bearer token.
	LoginPath string `yaml:"login_path"`
	// Path of the OpenAPI document on the remote service.
	SpecPath string `yaml:"spec_path"`
	// Credentials for the login endpoint.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Verify the remote TLS certificate. Off by default: the targeted
	// deployments commonly run self-signed.
	VerifySSL bool `yaml:"verify_ssl"`
	// Per-call timeout enforced by the transport.
	Timeout time.Duration `yaml:"timeout"`
	// Outbound requests per second, 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// ServerConfig describes the local process surface.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	// Prometheus listen address, empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://10.10.10.10:50443",
			LoginPath: "/api/auth/login",
			SpecPath:  "/v3/api-docs",
			VerifySSL: false,
			Timeout:   30 * time.Second,
		},
		Server: ServerConfig{
			Name:    "apibridge",
			Version: "dev",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Loader loads configuration with the precedence
// defaults → YAML file → environment.
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader creates a loader with the default env prefix.
func NewLoader() *Loader {
	return &Loader{envPrefix: "APIBRIDGE"}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix overrides the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load resolves the final configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	l.applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides config from the environment. The CS_* names are the
// original deployment's variables and take effect when the prefixed names
// are unset.
func (l *Loader) applyEnv(cfg *Config) {
	setString(&cfg.API.BaseURL, l.env("API_BASE_URL"), "CS_BASE_URL")
	setString(&cfg.API.Username, l.env("API_USERNAME"), "CS_USERNAME")
	setString(&cfg.API.Password, l.env("API_PASSWORD"), "CS_PASSWORD")
	setString(&cfg.API.LoginPath, l.env("API_LOGIN_PATH"))
	setString(&cfg.API.SpecPath, l.env("API_SPEC_PATH"))
	setBool(&cfg.API.VerifySSL, l.env("API_VERIFY_SSL"), "CS_VERIFY_SSL")
	setDuration(&cfg.API.Timeout, l.env("API_TIMEOUT"))
	setString(&cfg.Server.MetricsAddr, l.env("METRICS_ADDR"))
	setString(&cfg.Log.Level, l.env("LOG_LEVEL"))
	setString(&cfg.Log.Format, l.env("LOG_FORMAT"))
}

func (l *Loader) env(suffix string) string {
	return l.envPrefix + "_" + suffix
}

func setString(dst *string, names ...string) {
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
			return
		}
	}
}

func setBool(dst *bool, names ...string) {
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			*dst = strings.EqualFold(v, "true")
			return
		}
	}
}

func setDuration(dst *time.Duration, names ...string) {
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			} else if secs, err := strconv.Atoi(v); err == nil {
				*dst = time.Duration(secs) * time.Second
			}
			return
		}
	}
}

// Validate rejects configurations that cannot produce a session.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Username == "" || c.API.Password == "" {
		return fmt.Errorf("api.username and api.password must be set")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
