// Package gateway runs the bot's HTTP surface: the Telegram webhook
// endpoint, a health check, and Prometheus metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds the gateway's listen settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// ReadTimeout, WriteTimeout and ShutdownTimeout bound request handling
	// and graceful shutdown.
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// defaults fills unset fields.
func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Gateway is the HTTP server hosting webhook, health, and metrics routes.
type Gateway struct {
	config   Config
	logger   *slog.Logger
	server   *http.Server
	webhook  http.Handler
	health   *HealthReporter
	gatherer prometheus.Gatherer
	addr     string
}

// New creates a Gateway. webhook handles POST /webhook/telegram; gatherer
// (may be nil) backs GET /metrics.
func New(config Config, webhook http.Handler, health *HealthReporter, gatherer prometheus.Gatherer, logger *slog.Logger) *Gateway {
	config.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:   config,
		logger:   logger,
		webhook:  webhook,
		health:   health,
		gatherer: gatherer,
	}
}

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", g.health.ServeHTTP)

	if g.webhook != nil {
		r.Post("/webhook/telegram", g.webhook.ServeHTTP)
	}

	if g.gatherer != nil {
		r.Get("/metrics", promhttp.HandlerFor(g.gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	}

	return r
}

// Start binds the listen address and begins serving in a goroutine.
// A failed bind is returned synchronously; later serve errors are logged.
func (g *Gateway) Start() error {
	ln, err := net.Listen("tcp", g.config.Addr)
	if err != nil {
		return fmt.Errorf("gateway: listen %s: %w", g.config.Addr, err)
	}

	g.server = &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	g.addr = ln.Addr().String()

	go func() {
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway: serve failed", "error", err)
		}
	}()

	g.logger.Info("gateway: listening", "addr", g.addr)
	return nil
}

// Addr returns the bound listen address, valid after Start.
func (g *Gateway) Addr() string {
	if g.addr != "" {
		return g.addr
	}
	return g.config.Addr
}

// Stop gracefully shuts the server down, bounded by ShutdownTimeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	if err := g.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway: shutdown: %w", err)
	}
	g.logger.Info("gateway: stopped")
	return nil
}
