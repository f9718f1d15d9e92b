package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config. All problems are
// collected and returned joined, so a broken file is reported in one pass.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if cfg.Telegram.Token == "" {
		errs = append(errs, errors.New("config: telegram.token is required"))
	}

	switch cfg.Telegram.Mode {
	case ModePolling:
	case ModeWebhook:
		if cfg.Telegram.WebhookURL == "" {
			errs = append(errs, errors.New("config: telegram.webhook_url is required in webhook mode"))
		} else if u, err := url.Parse(cfg.Telegram.WebhookURL); err != nil || u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("config: telegram.webhook_url must be an https URL, got %q", cfg.Telegram.WebhookURL))
		}
	default:
		errs = append(errs, fmt.Errorf("config: telegram.mode must be %q or %q, got %q",
			ModePolling, ModeWebhook, cfg.Telegram.Mode))
	}

	if cfg.Provider.APIKey == "" {
		errs = append(errs, errors.New("config: provider.api_key is required"))
	}

	if cfg.Cleanup.JanitorSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Cleanup.JanitorSchedule); err != nil {
			errs = append(errs, fmt.Errorf("config: cleanup.janitor_schedule: %w", err))
		}
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		errs = append(errs, errors.New("config: telemetry.endpoint is required when telemetry is enabled"))
	}

	return errors.Join(errs...)
}

// ParseLogLevel maps a config level string to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: log.level must be one of debug, info, warn, error; got %q", level)
	}
}
