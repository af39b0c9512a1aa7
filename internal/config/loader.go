package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DirName is the per-project directory holding config and run history.
const DirName = ".turing"

// Default values for Config.
const (
	DefaultMaxSteps       = 10000
	DefaultMaxOperand     = 20
	DefaultServerPort     = 8374
	DefaultProcessTimeout = 10 * time.Second
	DefaultRateRequests   = 60
	DefaultRateWindow     = time.Minute
	DefaultLogLevel       = "info"
)

// DefaultServerConfig returns a ServerConfig with sensible default values.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           DefaultServerPort,
		Mode:           ModeInProcess,
		ProcessTimeout: DefaultProcessTimeout,
		RateLimit: RateLimit{
			MaxRequests: DefaultRateRequests,
			Window:      DefaultRateWindow,
		},
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Engine: Engine{MaxSteps: DefaultMaxSteps},
		Limits: Limits{MaxOperand: DefaultMaxOperand},
		Server: DefaultServerConfig(),
		Log:    Log{Level: DefaultLogLevel},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Path returns the config file location under basePath.
func Path(basePath string) string {
	return filepath.Join(basePath, DirName, "config.yaml")
}

// LoadConfig reads .turing/config.yaml from basePath over the defaults,
// then applies TURING_* variables from basePath/.env and the process
// environment. Process variables take precedence over .env entries.
func LoadConfig(basePath string) (*Config, error) {
	return Load(basePath, environ())
}

// Load is LoadConfig with an explicit process environment.
func Load(basePath string, environment map[string]string) (*Config, error) {
	cfg, err := readFile(basePath)
	if err != nil {
		return nil, err
	}

	vars, err := LoadEnvFile(basePath)
	if err != nil {
		return nil, err
	}
	for k, v := range environment {
		vars[k] = v
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFile reads .turing/config.yaml over the defaults without applying
// .env or the environment. Use it to load a config that will be saved
// back.
func LoadFile(basePath string) (*Config, error) {
	cfg, err := readFile(basePath)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(basePath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path(basePath))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	case !os.IsNotExist(err):
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile reads basePath/.env. A missing file yields an empty map.
func LoadEnvFile(basePath string) (map[string]string, error) {
	envPath := filepath.Join(basePath, ".env")
	if _, err := os.Stat(envPath); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to stat env file: %w", err)
	}

	vars, err := godotenv.Read(envPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file: %w", err)
	}
	return vars, nil
}

// Save writes cfg to .turing/config.yaml under basePath.
func Save(basePath string, cfg *Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	path := Path(basePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if cfg.Engine.MaxSteps <= 0 {
		return ValidationError{Field: "engine.max_steps", Message: "must be positive"}
	}
	if cfg.Limits.MaxOperand < 0 {
		return ValidationError{Field: "limits.max_operand", Message: "must not be negative"}
	}
	if err := ValidateServerConfig(&cfg.Server); err != nil {
		return err
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return ValidationError{Field: "log.level", Message: "must be one of debug, info, warn, error"}
	}
	return nil
}

// ValidateServerConfig checks that server config values are valid.
func ValidateServerConfig(cfg *ServerConfig) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return ValidationError{Field: "server.port", Message: "must be between 0 and 65535"}
	}
	if cfg.Mode != ModeInProcess && cfg.Mode != ModeProcess {
		return ValidationError{Field: "server.mode", Message: fmt.Sprintf("must be %q or %q", ModeInProcess, ModeProcess)}
	}
	if cfg.ProcessTimeout <= 0 {
		return ValidationError{Field: "server.process_timeout", Message: "must be positive"}
	}
	if cfg.RateLimit.MaxRequests < 0 {
		return ValidationError{Field: "server.rate_limit.max_requests", Message: "must not be negative"}
	}
	if cfg.RateLimit.MaxRequests > 0 && cfg.RateLimit.Window <= 0 {
		return ValidationError{Field: "server.rate_limit.window", Message: "must be positive"}
	}
	return nil
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[k] = v
		}
	}
	return out
}
