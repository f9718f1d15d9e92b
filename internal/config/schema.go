// Package config handles YAML configuration loading, environment variable
// expansion, defaulting, and structural validation for tgaibot.
package config

import "time"

// Run modes for receiving Telegram updates.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config is the top-level configuration structure.
type Config struct {
	// Log controls structured logging.
	Log LogConfig `yaml:"log"`

	// Telegram configures the Bot API connection and update delivery.
	Telegram TelegramConfig `yaml:"telegram"`

	// Provider configures the OpenRouter LLM backend.
	Provider ProviderConfig `yaml:"provider"`

	// Memory configures conversation persistence.
	Memory MemoryConfig `yaml:"memory"`

	// Downloads configures file intake from Telegram.
	Downloads DownloadsConfig `yaml:"downloads"`

	// Cleanup configures the clean subcommand and the downloads janitor.
	Cleanup CleanupConfig `yaml:"cleanup"`

	// Gateway configures the HTTP server (webhook, health, metrics).
	Gateway GatewayConfig `yaml:"gateway"`

	// Telemetry configures optional OpenTelemetry trace export.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// TelegramConfig configures the Bot API connection and update delivery.
type TelegramConfig struct {
	// Token is the bot token from @BotFather.
	Token string `yaml:"token"`

	// Mode selects update delivery: "polling" or "webhook".
	Mode string `yaml:"mode"`

	// WebhookURL is the public base URL registered with Telegram in
	// webhook mode, e.g. "https://bot.example.com". The webhook path is
	// appended automatically.
	WebhookURL string `yaml:"webhook_url"`

	// WebhookSecret is the value Telegram echoes back in
	// X-Telegram-Bot-Api-Secret-Token. Empty disables the check.
	WebhookSecret string `yaml:"webhook_secret"`

	// PollingTimeout is the long-poll timeout in seconds.
	PollingTimeout int `yaml:"polling_timeout"`

	// AllowedUsers and AllowedChats restrict who may talk to the bot.
	// Both empty means the bot is public.
	AllowedUsers []int64 `yaml:"allowed_users"`
	AllowedChats []int64 `yaml:"allowed_chats"`
}

// ProviderConfig configures the OpenRouter LLM backend.
type ProviderConfig struct {
	// APIKey is the OpenRouter API key.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the API endpoint. Empty uses the public endpoint.
	BaseURL string `yaml:"base_url"`

	// Model is the default model ID, or "auto" for automatic selection.
	Model string `yaml:"model"`

	// Referer and Title are sent as HTTP-Referer / X-Title attribution
	// headers, which OpenRouter uses for app rankings.
	Referer string `yaml:"referer"`
	Title   string `yaml:"title"`

	// Timeout bounds a single completion request.
	Timeout time.Duration `yaml:"timeout"`

	// Streaming enables incremental responses edited into the placeholder
	// message.
	Streaming bool `yaml:"streaming"`
}

// MemoryConfig configures conversation persistence.
type MemoryConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// DownloadsConfig configures file intake from Telegram.
type DownloadsConfig struct {
	// Dir is where received files are stored before extraction.
	Dir string `yaml:"dir"`

	// MaxFileSizeMB rejects larger attachments before download.
	MaxFileSizeMB int `yaml:"max_file_size_mb"`

	// OCRDir is an extra directory searched for the tesseract binary,
	// in addition to PATH.
	OCRDir string `yaml:"ocr_dir"`
}

// CleanupConfig configures the clean subcommand and the downloads janitor.
type CleanupConfig struct {
	// CacheDir is removed wholesale by the clean subcommand.
	CacheDir string `yaml:"cache_dir"`

	// LogSuffix selects which files in the working directory count as
	// log files.
	LogSuffix string `yaml:"log_suffix"`

	// JanitorSchedule is a cron expression for periodic downloads
	// cleanup. Empty disables the janitor.
	JanitorSchedule string `yaml:"janitor_schedule"`

	// JanitorMaxAge is how old a downloaded file must be before the
	// janitor removes it.
	JanitorMaxAge time.Duration `yaml:"janitor_max_age"`
}

// GatewayConfig configures the HTTP server.
type GatewayConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig configures optional OpenTelemetry trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// ApplyDefaults fills unset fields with their default values.
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Telegram.Mode == "" {
		c.Telegram.Mode = ModePolling
	}
	if c.Telegram.PollingTimeout <= 0 {
		c.Telegram.PollingTimeout = 30
	}
	if c.Provider.Model == "" {
		c.Provider.Model = "auto"
	}
	if c.Provider.Timeout <= 0 {
		c.Provider.Timeout = 120 * time.Second
	}
	if c.Memory.Path == "" {
		c.Memory.Path = "data/tgaibot.db"
	}
	if c.Downloads.Dir == "" {
		c.Downloads.Dir = "downloads"
	}
	if c.Downloads.MaxFileSizeMB <= 0 {
		c.Downloads.MaxFileSizeMB = 20
	}
	if c.Cleanup.CacheDir == "" {
		c.Cleanup.CacheDir = "cache"
	}
	if c.Cleanup.LogSuffix == "" {
		c.Cleanup.LogSuffix = ".log"
	}
	if c.Cleanup.JanitorMaxAge <= 0 {
		c.Cleanup.JanitorMaxAge = time.Hour
	}
	if c.Gateway.Addr == "" {
		c.Gateway.Addr = ":8080"
	}
}
