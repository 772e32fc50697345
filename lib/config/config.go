// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file for Load.
const EnvironmentVariable = "BEING_IDP_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the being-idp configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Listen     ListenConfig    `yaml:"listen"`
	Storage    StorageConfig   `yaml:"storage"`
	Challenges ChallengeConfig `yaml:"challenges"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
	Logging    LoggingConfig   `yaml:"logging"`

	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds the fields an environment section may replace.
type Overrides struct {
	Listen     *ListenConfig    `yaml:"listen,omitempty"`
	Storage    *StorageConfig   `yaml:"storage,omitempty"`
	Challenges *ChallengeConfig `yaml:"challenges,omitempty"`
	RateLimit  *RateLimitConfig `yaml:"rate_limit,omitempty"`
	Logging    *LoggingConfig   `yaml:"logging,omitempty"`
}

// ListenConfig configures the HTTP listener.
type ListenConfig struct {
	// Address is host:port. Default: 127.0.0.1:8470
	Address string `yaml:"address"`

	// ReadTimeout and WriteTimeout are Go durations. Default: 10s
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// StorageConfig configures where challenges and beings are kept.
type StorageConfig struct {
	// Backend is "sqlite" or "memory". Default: sqlite
	Backend string `yaml:"backend"`

	// Path is the SQLite database file.
	// Default: ${BEING_IDP_ROOT}/idp.db
	Path string `yaml:"path"`

	// PoolSize is the number of SQLite connections. Default: 4
	PoolSize int `yaml:"pool_size"`
}

// ChallengeConfig configures pending registration challenges.
type ChallengeConfig struct {
	// TTL is how long a challenge stays completable. Default: 10m
	TTL string `yaml:"ttl"`

	// PurgeInterval is how often expired challenges are deleted.
	// Default: 1m
	PurgeInterval string `yaml:"purge_interval"`

	// NonceLength is the number of random nonce bytes. Default: 32
	NonceLength int `yaml:"nonce_length"`
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	// Enabled turns limiting on. Default: false (development), true
	// (production)
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained rate per client. Default: 2
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the bucket size per client. Default: 10
	Burst int `yaml:"burst"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is debug, info, warn, or error. Default: info
	Level string `yaml:"level"`

	// Format is text or json. Default: text (development), json
	// (production)
	Format string `yaml:"format"`
}

// Default returns the development defaults that a loaded file is
// merged over.
func Default() *Config {
	cfg := &Config{
		Environment: Development,
		Listen: ListenConfig{
			Address:      "127.0.0.1:8470",
			ReadTimeout:  "10s",
			WriteTimeout: "10s",
		},
		Storage: StorageConfig{
			Backend:  BackendSQLite,
			Path:     "${BEING_IDP_ROOT}/idp.db",
			PoolSize: 4,
		},
		Challenges: ChallengeConfig{
			TTL:           "10m",
			PurgeInterval: "1m",
			NonceLength:   32,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 2,
			Burst:             10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
	cfg.expandVariables()
	return cfg
}

// Load loads the file named by BEING_IDP_CONFIG. There is no fallback
// when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your being-idp.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, applies the matching
// environment section, and expands path variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &Overrides{
				RateLimit:  &RateLimitConfig{Enabled: true},
				Challenges: &ChallengeConfig{TTL: "5m"},
				Logging:    &LoggingConfig{Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Listen != nil {
		overrideString(&c.Listen.Address, overrides.Listen.Address)
		overrideString(&c.Listen.ReadTimeout, overrides.Listen.ReadTimeout)
		overrideString(&c.Listen.WriteTimeout, overrides.Listen.WriteTimeout)
	}

	if overrides.Storage != nil {
		overrideString(&c.Storage.Backend, overrides.Storage.Backend)
		overrideString(&c.Storage.Path, overrides.Storage.Path)
		if overrides.Storage.PoolSize != 0 {
			c.Storage.PoolSize = overrides.Storage.PoolSize
		}
	}

	if overrides.Challenges != nil {
		overrideString(&c.Challenges.TTL, overrides.Challenges.TTL)
		overrideString(&c.Challenges.PurgeInterval, overrides.Challenges.PurgeInterval)
		if overrides.Challenges.NonceLength != 0 {
			c.Challenges.NonceLength = overrides.Challenges.NonceLength
		}
	}

	if overrides.RateLimit != nil {
		// Enabled is a bool, so a section that mentions rate_limit
		// always decides it.
		c.RateLimit.Enabled = overrides.RateLimit.Enabled
		if overrides.RateLimit.RequestsPerSecond != 0 {
			c.RateLimit.RequestsPerSecond = overrides.RateLimit.RequestsPerSecond
		}
		if overrides.RateLimit.Burst != 0 {
			c.RateLimit.Burst = overrides.RateLimit.Burst
		}
	}

	if overrides.Logging != nil {
		overrideString(&c.Logging.Level, overrides.Logging.Level)
		overrideString(&c.Logging.Format, overrides.Logging.Format)
	}
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func (c *Config) expandVariables() {
	homeDir, _ := os.UserHomeDir()
	vars := map[string]string{
		"BEING_IDP_ROOT": filepath.Join(homeDir, ".local", "share", "being-idp"),
		"HOME":           os.Getenv("HOME"),
	}
	c.Storage.Path = expandVars(c.Storage.Path, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}. The environment wins
// over vars so BEING_IDP_ROOT can be relocated.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		defaultValue := parts[2]

		if value := os.Getenv(name); value != "" {
			return value
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		return defaultValue
	})
}

// ChallengeTTL returns the parsed challenge TTL.
func (c *Config) ChallengeTTL() (time.Duration, error) {
	return parsePositiveDuration("challenges.ttl", c.Challenges.TTL)
}

// PurgeInterval returns the parsed purge interval.
func (c *Config) PurgeInterval() (time.Duration, error) {
	return parsePositiveDuration("challenges.purge_interval", c.Challenges.PurgeInterval)
}

// ReadTimeout returns the parsed listener read timeout.
func (c *Config) ReadTimeout() (time.Duration, error) {
	return parsePositiveDuration("listen.read_timeout", c.Listen.ReadTimeout)
}

// WriteTimeout returns the parsed listener write timeout.
func (c *Config) WriteTimeout() (time.Duration, error) {
	return parsePositiveDuration("listen.write_timeout", c.Listen.WriteTimeout)
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return duration, nil
}

// Validate checks the configuration and reports every error found.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Listen.Address == "" {
		errs = append(errs, fmt.Errorf("listen.address is required"))
	}
	for _, parse := range []func() (time.Duration, error){
		c.ReadTimeout, c.WriteTimeout, c.ChallengeTTL, c.PurgeInterval,
	} {
		if _, err := parse(); err != nil {
			errs = append(errs, err)
		}
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for the sqlite backend"))
		}
		if c.Storage.PoolSize <= 0 {
			errs = append(errs, fmt.Errorf("storage.pool_size must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be one of: %v", []string{BackendSQLite, BackendMemory}))
	}

	if c.Challenges.NonceLength < 16 {
		errs = append(errs, fmt.Errorf("challenges.nonce_length must be at least 16"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive"))
		}
		if c.RateLimit.Burst <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be positive"))
		}
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", levels))
	}
	formats := []string{"text", "json"}
	if !slices.Contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	return errors.Join(errs...)
}

// EnsurePaths creates the SQLite database's parent directory.
func (c *Config) EnsurePaths() error {
	if c.Storage.Backend != BackendSQLite {
		return nil
	}
	directory := filepath.Dir(c.Storage.Path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	return nil
}
