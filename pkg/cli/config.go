package cli

import (
	"fmt"
	"strings"
	"time"

	"scrape-dash-go/pkg/config"
	"scrape-dash-go/pkg/utils"

	"github.com/pelletier/go-toml/v2"
)

// ShowConfig displays the current configuration
func (a *App) ShowConfig() error {
	data, err := toml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	fmt.Fprintln(a.out, string(data))
	return nil
}

// SetConfig sets a configuration value
// Format: section.key=value (e.g., "api.base_url=http://localhost:8000")
func (a *App) SetConfig(setStr string) error {
	parts := strings.SplitN(setStr, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid format: expected 'section.key=value'")
	}

	keyPath := strings.Split(parts[0], ".")
	value := parts[1]

	if len(keyPath) != 2 {
		return fmt.Errorf("invalid key format: expected 'section.key'")
	}

	section := keyPath[0]
	key := keyPath[1]

	switch section {
	case "api":
		switch key {
		case "base_url":
			u, err := utils.ValidateURL(value)
			if err != nil {
				return err
			}
			a.cfg.API.BaseURL = u
		case "request_timeout":
			return setDuration(&a.cfg.API.RequestTimeout, key, value, a.cfg)
		default:
			return fmt.Errorf("unknown api key: %s", key)
		}
	case "dashboard":
		switch key {
		case "poll_interval":
			return setDuration(&a.cfg.Dashboard.PollInterval, key, value, a.cfg)
		case "health_interval":
			return setDuration(&a.cfg.Dashboard.HealthInterval, key, value, a.cfg)
		case "files_interval":
			return setDuration(&a.cfg.Dashboard.FilesInterval, key, value, a.cfg)
		case "terminate_confirm_delay":
			return setDuration(&a.cfg.Dashboard.TerminateConfirmDelay, key, value, a.cfg)
		case "toast_duration":
			return setDuration(&a.cfg.Dashboard.ToastDuration, key, value, a.cfg)
		case "location":
			a.cfg.Dashboard.Location = strings.TrimSpace(value)
		default:
			return fmt.Errorf("unknown dashboard key: %s", key)
		}
	case "log":
		switch key {
		case "level":
			switch value {
			case "debug", "info", "warn", "error":
				a.cfg.Log.Level = value
			default:
				return fmt.Errorf("invalid log level: %s", value)
			}
		case "file":
			a.cfg.Log.File = value
		default:
			return fmt.Errorf("unknown log key: %s", key)
		}
	default:
		return fmt.Errorf("unknown section: %s", section)
	}

	return config.Save(a.cfg)
}

func setDuration(dst *config.Duration, key, value string, cfg *config.Config) error {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid %s value: %s", key, value)
	}
	*dst = config.Duration(d)
	return config.Save(cfg)
}
