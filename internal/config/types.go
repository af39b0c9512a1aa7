package config

import "time"

// Engine holds machine settings.
type Engine struct {
	MaxSteps int `yaml:"max_steps" env:"TURING_MAX_STEPS"`
}

// Limits defines the operand policy applied at the request boundary.
type Limits struct {
	// MaxOperand caps each operand; 0 disables the cap.
	MaxOperand int `yaml:"max_operand" env:"TURING_MAX_OPERAND"`
}

// RateLimit configures per-client request limiting on the HTTP API.
type RateLimit struct {
	MaxRequests int           `yaml:"max_requests" env:"TURING_RATE_MAX_REQUESTS"`
	Window      time.Duration `yaml:"window" env:"TURING_RATE_WINDOW"`
}

// ServerConfig configures `turing serve`.
type ServerConfig struct {
	Port int `yaml:"port" env:"TURING_PORT"`
	// PasswordHash is an argon2id hash; empty leaves the API open.
	PasswordHash string `yaml:"password_hash,omitempty" env:"TURING_PASSWORD_HASH"`
	// Mode selects how requests are simulated: "inprocess" or "process".
	Mode string `yaml:"mode" env:"TURING_SERVER_MODE"`
	// Binary is the executable started per request in process mode.
	// Empty means the running executable.
	Binary         string        `yaml:"binary,omitempty" env:"TURING_BINARY"`
	ProcessTimeout time.Duration `yaml:"process_timeout" env:"TURING_PROCESS_TIMEOUT"`
	RateLimit      RateLimit     `yaml:"rate_limit"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level" env:"TURING_LOG_LEVEL"`
	// File, when set, receives JSON log records in addition to stderr.
	File string `yaml:"file,omitempty" env:"TURING_LOG_FILE"`
}

// Config represents the .turing/config.yaml file.
type Config struct {
	Engine Engine       `yaml:"engine"`
	Limits Limits       `yaml:"limits"`
	Server ServerConfig `yaml:"server"`
	Log    Log          `yaml:"log"`
}

// Server modes.
const (
	ModeInProcess = "inprocess"
	ModeProcess   = "process"
)
