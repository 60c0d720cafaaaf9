package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the backoffice API used when nothing else is configured.
	DefaultBaseURL = "https://api-dev.etiquettedpe.fr/backoffice"
	// DefaultTimeout bounds every backend call.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxCombinations is the largest scenario count a submission may
	// generate.
	DefaultMaxCombinations int64 = 10000
	// DefaultAppURL prefixes share links.
	DefaultAppURL = "http://localhost:5173"
)

// Config is the runtime configuration of the CLI and the TUI.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Session    SessionConfig    `yaml:"session"`
	Log        LogConfig        `yaml:"log"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// APIConfig locates the backoffice API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"DPESIM_API_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"DPESIM_API_TIMEOUT"`
}

// SessionConfig says where the signed-in session is kept.
type SessionConfig struct {
	File string `yaml:"file" env:"DPESIM_SESSION_FILE"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `yaml:"level" env:"DPESIM_LOG_LEVEL"`
}

// SimulationConfig holds limits of the scenario editor.
type SimulationConfig struct {
	MaxCombinations int64  `yaml:"max_combinations" env:"DPESIM_MAX_COMBINATIONS"`
	AppURL          string `yaml:"app_url" env:"DPESIM_APP_URL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Session: SessionConfig{
			File: DefaultSessionFile(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Simulation: SimulationConfig{
			MaxCombinations: DefaultMaxCombinations,
			AppURL:          DefaultAppURL,
		},
	}
}

// DefaultDir is the per-user directory holding config.yaml and the session.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".dpesim"
	}
	return filepath.Join(dir, "dpesim")
}

// DefaultSessionFile is where the session is stored unless configured.
func DefaultSessionFile() string {
	return filepath.Join(DefaultDir(), "session.json")
}

// DefaultConfigFile is read when no --config flag is given.
func DefaultConfigFile() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// InputParser handles parsing of configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// Load builds the effective configuration: defaults, then the YAML file (if
// any), then environment overrides. An empty filename falls back to
// DefaultConfigFile and tolerates its absence.
func (ip *InputParser) Load(filename string) (*Config, error) {
	explicit := filename != ""
	if !explicit {
		filename = DefaultConfigFile()
	}

	cfg := Default()
	if err := ip.mergeFile(&cfg, filename); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := ip.ValidateConfiguration(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults,
// without environment overrides.
func (ip *InputParser) LoadFromFile(filename string) (*Config, error) {
	cfg := Default()
	if err := ip.mergeFile(&cfg, filename); err != nil {
		return nil, err
	}
	if err := ip.ValidateConfiguration(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (ip *InputParser) mergeFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(cfg *Config) error {
	if err := validateAPI(&cfg.API); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if strings.TrimSpace(cfg.Session.File) == "" {
		return fmt.Errorf("session: file is required")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", cfg.Log.Level)
	}
	if cfg.Simulation.MaxCombinations <= 0 {
		return fmt.Errorf("simulation: max_combinations must be positive, got %d", cfg.Simulation.MaxCombinations)
	}
	if u, err := url.Parse(cfg.Simulation.AppURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("simulation: app_url must be an absolute URL, got %q", cfg.Simulation.AppURL)
	}
	return nil
}

func validateAPI(api *APIConfig) error {
	u, err := url.Parse(api.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL, got %q", api.BaseURL)
	}
	if api.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", api.Timeout)
	}
	return nil
}
