// Package config loads the gateway's configuration. Values are resolved in
// priority order, lowest first: built-in defaults, an optional YAML file,
// then environment variables (a .env file is loaded into the environment
// first without overriding variables that are already set).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvIdPURL             = "IDP_URL"
	EnvIdPAudience        = "IDP_AUDIENCE"
	EnvIdPCacheTTL        = "IDP_CACHE_TTL"
	EnvIdPFetchTimeout    = "IDP_FETCH_TIMEOUT"
	EnvIdPClockSkew       = "IDP_CLOCK_SKEW"
	EnvServerAddr         = "SERVER_ADDR"
	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
)

// Config is the complete gateway configuration.
type Config struct {
	IdP    IdPConfig    `yaml:"idp"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// IdPConfig describes the identity provider tokens are checked against.
type IdPConfig struct {
	// URL is the issuer base URL; discovery is fetched from
	// {URL}/.well-known/openid-configuration.
	URL      string `yaml:"url" validate:"required,url"`
	Audience string `yaml:"audience" validate:"required"`
	// CacheTTL of zero selects the provider default.
	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	// FetchTimeout of zero means no deadline on discovery and key set fetches.
	FetchTimeout time.Duration `yaml:"fetch_timeout" validate:"gte=0"`
	ClockSkew    time.Duration `yaml:"clock_skew" validate:"gte=0"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr               string        `yaml:"addr" validate:"required"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" validate:"dive,url"`
	ReadHeaderTimeout  time.Duration `yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Default returns the configuration used before any file or environment
// variable is applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:               ":3001",
			CORSAllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			ReadHeaderTimeout:  10 * time.Second,
			ShutdownTimeout:    10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var validate = validator.New()

// Load builds the configuration. configFile may be empty; when set it must
// exist. envFiles default to ".env" and are ignored when missing.
func Load(configFile string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	cfg := Default()

	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the struct tag constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	setString := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) error {
		v, ok := lookup(name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = d
		return nil
	}

	setString(EnvIdPURL, &c.IdP.URL)
	setString(EnvIdPAudience, &c.IdP.Audience)
	setString(EnvServerAddr, &c.Server.Addr)
	setString(EnvLogLevel, &c.Log.Level)
	setString(EnvLogFormat, &c.Log.Format)

	if v, ok := lookup(EnvCORSAllowedOrigins); ok {
		c.Server.CORSAllowedOrigins = splitList(v)
	}

	for name, dst := range map[string]*time.Duration{
		EnvIdPCacheTTL:     &c.IdP.CacheTTL,
		EnvIdPFetchTimeout: &c.IdP.FetchTimeout,
		EnvIdPClockSkew:    &c.IdP.ClockSkew,
	} {
		if err := setDuration(name, dst); err != nil {
			return err
		}
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
