package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for ClassKit.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
	AI       AIConfig       `yaml:"ai"`
}

// ServerConfig contains HTTP API server settings.
type ServerConfig struct {
	Host     string              `yaml:"host"`
	Port     int                 `yaml:"port"`
	Timeouts ServerTimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig          `yaml:"cors"`
}

// ServerTimeoutConfig contains HTTP timeout settings in seconds.
type ServerTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// SecurityConfig contains authentication and rate limiting settings.
type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt"`
	Argon2    Argon2Config    `yaml:"argon2"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// HashWorkers bounds how many password hashing operations may run
	// concurrently. Hashing is deliberately expensive; an unbounded number
	// of concurrent logins would starve the rest of the server.
	HashWorkers int `yaml:"hash_workers"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`

	// AccessTokenTTL is the access token lifetime in minutes.
	AccessTokenTTL int `yaml:"access_token_ttl"`

	// RefreshTokenTTL is the refresh token lifetime in hours.
	RefreshTokenTTL int `yaml:"refresh_token_ttl"`
}

// Argon2Config contains Argon2id password hashing cost parameters.
type Argon2Config struct {
	TimeCost    int `yaml:"time_cost"`
	MemoryKiB   int `yaml:"memory_kib"`
	Parallelism int `yaml:"parallelism"`
}

// RateLimitConfig contains rate limiting settings for credential endpoints.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Output string `yaml:"output"` // stdout, stderr
}

// AIConfig contains settings for the local Ollama inference service.
type AIConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	// Timeout is the per-request timeout in seconds. Generation on local
	// hardware can be slow, so this defaults well above typical HTTP values.
	Timeout int `yaml:"timeout"`
}

// Default configuration values.
const (
	defaultPort            = 8080
	defaultReadTimeout     = 10
	defaultWriteTimeout    = 30
	defaultIdleTimeout     = 60
	defaultBusyTimeout     = 5
	defaultAccessTTL       = 15  // minutes
	defaultRefreshTTL      = 168 // hours (7 days)
	defaultArgonTime       = 3
	defaultArgonMemoryKiB  = 64 * 1024
	defaultArgonThreads    = 4
	defaultHashWorkers     = 4
	defaultRateLimitPerMin = 10
	defaultRateLimitBurst  = 5
	defaultAITimeout       = 120
	minJWTSecretLength     = 32
)

// defaultConfig returns a Config populated with sensible defaults.
// The JWT secret has no default; it must come from the file or environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: defaultPort,
			Timeouts: ServerTimeoutConfig{
				Read:  defaultReadTimeout,
				Write: defaultWriteTimeout,
				Idle:  defaultIdleTimeout,
			},
		},
		Database: DatabaseConfig{
			Path:        "data/classkit.db",
			WALMode:     true,
			BusyTimeout: defaultBusyTimeout,
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL:  defaultAccessTTL,
				RefreshTokenTTL: defaultRefreshTTL,
			},
			Argon2: Argon2Config{
				TimeCost:    defaultArgonTime,
				MemoryKiB:   defaultArgonMemoryKiB,
				Parallelism: defaultArgonThreads,
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: defaultRateLimitPerMin,
				Burst:             defaultRateLimitBurst,
			},
			HashWorkers: defaultHashWorkers,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		AI: AIConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.1:8b",
			Timeout: defaultAITimeout,
		},
	}
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CLASSKIT_SECTION_KEY
// For example: CLASSKIT_DATABASE_PATH, CLASSKIT_JWT_SECRET
//
// An empty path or a missing file is not an error: the server can run
// entirely from defaults plus environment variables (container deployments).
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Only secrets and deployment-specific values are overridable; everything else
// belongs in the YAML file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CLASSKIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CLASSKIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CLASSKIT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CLASSKIT_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	if v := os.Getenv("CLASSKIT_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("CLASSKIT_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("CLASSKIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for invalid or insecure values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be 1-65535, got %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if len(c.Security.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("jwt secret must be at least %d characters (set CLASSKIT_JWT_SECRET)", minJWTSecretLength)
	}

	if c.Security.JWT.AccessTokenTTL <= 0 || c.Security.JWT.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	// Access tokens must be much shorter-lived than refresh tokens.
	if c.Security.JWT.AccessTokenTTL >= c.Security.JWT.RefreshTokenTTL*60 {
		return fmt.Errorf("access token TTL (%dm) must be shorter than refresh token TTL (%dh)",
			c.Security.JWT.AccessTokenTTL, c.Security.JWT.RefreshTokenTTL)
	}

	if c.Security.Argon2.TimeCost < 1 || c.Security.Argon2.MemoryKiB < 1024 || c.Security.Argon2.Parallelism < 1 {
		return fmt.Errorf("argon2 parameters below safe minimums (time=%d memory_kib=%d parallelism=%d)",
			c.Security.Argon2.TimeCost, c.Security.Argon2.MemoryKiB, c.Security.Argon2.Parallelism)
	}

	if c.Security.HashWorkers < 1 {
		return fmt.Errorf("hash_workers must be at least 1")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	return nil
}
