package config

import (
	"log/slog"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Telegram.Token = "123:abc"
	cfg.Provider.APIKey = "sk-or-test"
	return cfg
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.Telegram.Token = "" },
			wantErr: "telegram.token",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.Provider.APIKey = "" },
			wantErr: "provider.api_key",
		},
		{
			name:    "bad mode",
			mutate:  func(c *Config) { c.Telegram.Mode = "carrier-pigeon" },
			wantErr: "telegram.mode",
		},
		{
			name:    "webhook mode without url",
			mutate:  func(c *Config) { c.Telegram.Mode = ModeWebhook },
			wantErr: "webhook_url",
		},
		{
			name: "webhook url not https",
			mutate: func(c *Config) {
				c.Telegram.Mode = ModeWebhook
				c.Telegram.WebhookURL = "http://bot.example.com"
			},
			wantErr: "https",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log.level",
		},
		{
			name:    "bad janitor schedule",
			mutate:  func(c *Config) { c.Cleanup.JanitorSchedule = "every sometimes" },
			wantErr: "janitor_schedule",
		},
		{
			name:    "telemetry enabled without endpoint",
			mutate:  func(c *Config) { c.Telemetry.Enabled = true },
			wantErr: "telemetry.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	cfg.Provider.APIKey = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "telegram.token") || !strings.Contains(msg, "provider.api_key") {
		t.Errorf("error %q should report both problems", msg)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLogLevel("loud"); err == nil {
		t.Error("ParseLogLevel(\"loud\") succeeded")
	}
}
