package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration stored in TOML as a Go duration string ("2s").
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	// Backend API
	API struct {
		BaseURL        string   `toml:"base_url"`        // Scrape backend, e.g. http://localhost:8000
		RequestTimeout Duration `toml:"request_timeout"` // Per-request HTTP timeout
	} `toml:"api"`

	// Dashboard timers
	Dashboard struct {
		PollInterval          Duration `toml:"poll_interval"`
		HealthInterval        Duration `toml:"health_interval"`
		FilesInterval         Duration `toml:"files_interval"`
		TerminateConfirmDelay Duration `toml:"terminate_confirm_delay"`
		ToastDuration         Duration `toml:"toast_duration"`
		Location              string   `toml:"location"` // Sent with every start request
	} `toml:"dashboard"`

	// Logging
	Log struct {
		Level string `toml:"level"` // debug, info, warn, error
		File  string `toml:"file"`  // Empty means tmp/cli-<timestamp>.log
	} `toml:"log"`
}

// DefaultConfig returns a config with default values.
// The backend default matches the FastAPI dev server port.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.RequestTimeout = Duration(30 * time.Second)
	cfg.Dashboard.PollInterval = Duration(2 * time.Second)
	cfg.Dashboard.HealthInterval = Duration(5 * time.Second)
	cfg.Dashboard.FilesInterval = Duration(5 * time.Second)
	cfg.Dashboard.TerminateConfirmDelay = Duration(1 * time.Second)
	cfg.Dashboard.ToastDuration = Duration(3 * time.Second)
	cfg.Log.Level = "info"
	return cfg
}

// ConfigPath returns the path to the config file.
// SCRAPE_DASH_CONFIG overrides the default location.
func ConfigPath() (string, error) {
	if p := os.Getenv("SCRAPE_DASH_CONFIG"); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".config", "scrape-dash")
	return filepath.Join(configDir, "config.toml"), nil
}

// Load reads configuration from ~/.config/scrape-dash/config.toml.
// Creates the file with defaults if it doesn't exist.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	configPath, err = expandHome(configPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyEnv(cfg)

		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	return cfg, nil
}

// Parse decodes TOML and fills any missing values from DefaultConfig.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	mergeDefaults(&cfg)
	return &cfg, nil
}

func mergeDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = def.API.BaseURL
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = def.API.RequestTimeout
	}
	if cfg.Dashboard.PollInterval <= 0 {
		cfg.Dashboard.PollInterval = def.Dashboard.PollInterval
	}
	if cfg.Dashboard.HealthInterval <= 0 {
		cfg.Dashboard.HealthInterval = def.Dashboard.HealthInterval
	}
	if cfg.Dashboard.FilesInterval <= 0 {
		cfg.Dashboard.FilesInterval = def.Dashboard.FilesInterval
	}
	if cfg.Dashboard.TerminateConfirmDelay <= 0 {
		cfg.Dashboard.TerminateConfirmDelay = def.Dashboard.TerminateConfirmDelay
	}
	if cfg.Dashboard.ToastDuration <= 0 {
		cfg.Dashboard.ToastDuration = def.Dashboard.ToastDuration
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// Override with environment variables if set (useful for Docker)
func applyEnv(cfg *Config) {
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
}

// Save writes the configuration to the config file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	configPath, err = expandHome(configPath)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return strings.Replace(path, "~", homeDir, 1), nil
}
