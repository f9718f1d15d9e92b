// Package app provides the shared entry point wiring for the tgaibot binary.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tgaibot/tgaibot/internal/bot"
	"github.com/tgaibot/tgaibot/internal/cleanup"
	"github.com/tgaibot/tgaibot/internal/config"
	"github.com/tgaibot/tgaibot/internal/cron"
	"github.com/tgaibot/tgaibot/internal/extract"
	"github.com/tgaibot/tgaibot/internal/gateway"
	"github.com/tgaibot/tgaibot/internal/history"
	"github.com/tgaibot/tgaibot/internal/metrics"
	"github.com/tgaibot/tgaibot/internal/provider"
	"github.com/tgaibot/tgaibot/internal/provider/openrouter"
	"github.com/tgaibot/tgaibot/internal/telegram"
	"github.com/tgaibot/tgaibot/internal/telemetry"
)

// webhookPath is where the gateway mounts the Telegram webhook handler.
const webhookPath = "/webhook/telegram"

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, the standard locations are searched.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string
}

// Run loads configuration, wires every component, starts receiving updates,
// and blocks until a shutdown signal is received.
func Run(params RunParams) error {
	cfg, err := loadConfig(params.ConfigPath)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if params.LogLevel != "" {
		level = params.LogLevel
	}
	slogLevel, err := config.ParseLogLevel(level)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel,
	}))

	ctx := context.Background()

	tracer, shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Insecure: cfg.Telemetry.Insecure,
	}, "tgaibot", params.Version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	store, err := history.Open(cfg.Memory.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	llm := provider.NewFailover(openrouter.New(openrouter.Options{
		APIKey:       cfg.Provider.APIKey,
		BaseURL:      cfg.Provider.BaseURL,
		DefaultModel: cfg.Provider.Model,
		Referer:      cfg.Provider.Referer,
		Title:        cfg.Provider.Title,
		Timeout:      cfg.Provider.Timeout,
	}), openrouter.FallbackOrder, logger)

	ocr := extract.FindOCR(cfg.Downloads.OCRDir)
	if ocr == nil {
		logger.Info("no OCR engine found, image text extraction disabled")
	}

	client := telegram.NewClient(cfg.Telegram.Token, "")

	me, err := client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("app: telegram token check failed: %w", err)
	}
	logger.Info("authorized", "bot", me.Username, "mode", cfg.Telegram.Mode)

	m := metrics.New()

	b := bot.New(bot.Config{
		DownloadsDir: cfg.Downloads.Dir,
		MaxFileSize:  int64(cfg.Downloads.MaxFileSizeMB) << 20,
		Streaming:    cfg.Provider.Streaming,
	},
		client, llm, store, extract.New(ocr),
		telegram.NewAllowList(cfg.Telegram.AllowedUsers, cfg.Telegram.AllowedChats),
		m, tracer, logger)

	health := gateway.NewHealthReporter(cfg.Telegram.Mode)

	var webhook http.Handler
	if cfg.Telegram.Mode == config.ModeWebhook {
		webhook = telegram.NewWebhookReceiver(b.HandleUpdate, logger, cfg.Telegram.WebhookSecret)
	}

	gw := gateway.New(gateway.Config{
		Addr:            cfg.Gateway.Addr,
		ReadTimeout:     cfg.Gateway.ReadTimeout,
		WriteTimeout:    cfg.Gateway.WriteTimeout,
		ShutdownTimeout: cfg.Gateway.ShutdownTimeout,
	}, webhook, health, m.Registry(), logger)
	if err := gw.Start(); err != nil {
		return err
	}

	var poller *telegram.Poller
	switch cfg.Telegram.Mode {
	case config.ModeWebhook:
		url := strings.TrimSuffix(cfg.Telegram.WebhookURL, "/") + webhookPath
		if err := client.SetWebhook(ctx, telegram.SetWebhookRequest{
			URL:         url,
			SecretToken: cfg.Telegram.WebhookSecret,
		}); err != nil {
			return fmt.Errorf("app: register webhook: %w", err)
		}
		logger.Info("webhook registered", "url", url)

	default:
		// A leftover webhook blocks getUpdates; drop it first.
		if err := client.DeleteWebhook(ctx); err != nil {
			logger.Warn("delete webhook failed", "error", err)
		}
		poller = telegram.NewPoller(client, b.HandleUpdate, logger, telegram.PollerConfig{
			Timeout: cfg.Telegram.PollingTimeout,
		})
		poller.Start()
	}

	scheduler := cron.NewScheduler(logger)
	var janitor *cleanup.Janitor
	if cfg.Cleanup.JanitorSchedule != "" {
		janitor = cleanup.NewJanitor(cfg.Downloads.Dir, cfg.Cleanup.JanitorMaxAge,
			cfg.Cleanup.JanitorSchedule, logger)
		if err := scheduler.RegisterJob(janitor); err != nil {
			return err
		}
		// Sweep once at startup so stale files from a previous run go away
		// without waiting for the first tick.
		if err := janitor.Run(ctx); err != nil {
			logger.Warn("startup downloads sweep failed", "error", err)
		}
	}
	if err := scheduler.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())
	health.SetDegraded(true)

	if poller != nil {
		poller.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler stop failed", "error", err)
	}
	if err := gw.Stop(shutdownCtx); err != nil {
		logger.Warn("gateway stop failed", "error", err)
	}

	// Final sweep so stale downloads don't linger while the bot is down.
	if janitor != nil {
		if err := janitor.Run(shutdownCtx); err != nil {
			logger.Warn("shutdown downloads sweep failed", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// loadConfig resolves the config path, loads, and validates.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.FindPath()
		if path == "" {
			return nil, fmt.Errorf("app: no %s found; run \"tgaibot config init\" to create one", config.FileName)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
