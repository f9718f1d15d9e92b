// Package openrouter implements provider.Provider backed by the OpenRouter
// API, reaching OpenAI-compatible models through a single endpoint.
package openrouter

import (
	"net"
	"net/http"
	"time"

	"github.com/tgaibot/tgaibot/internal/provider"
)

// Interface guard.
var _ provider.Provider = (*Client)(nil)

// Options configures a Client.
type Options struct {
	// APIKey is the OpenRouter API key. Required.
	APIKey string

	// BaseURL is the API base URL. Defaults to the public endpoint.
	BaseURL string

	// DefaultModel is used when a request carries no model.
	DefaultModel string

	// Referer and Title populate the HTTP-Referer and X-Title headers
	// OpenRouter uses for app attribution.
	Referer string
	Title   string

	// Timeout bounds connection establishment and response headers.
	// Body reads are governed by the request context so long streams
	// are not killed mid-flight.
	Timeout time.Duration
}

// Client talks to the OpenRouter chat completions API.
type Client struct {
	opts Options
	http *http.Client
}

// New creates an OpenRouter client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openrouter.ai/api/v1"
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = ModelAuto
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Client{
		opts: opts,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: opts.Timeout}).DialContext,
				TLSHandshakeTimeout:   opts.Timeout,
				ResponseHeaderTimeout: opts.Timeout,
			},
		},
	}
}

// ContextWindowSize returns the context window size for the given model.
func (c *Client) ContextWindowSize(model string) int {
	if model == "" {
		model = c.opts.DefaultModel
	}
	return lookupContextWindow(model)
}

// resolveModel maps an empty or "auto" request model to a concrete model ID.
func (c *Client) resolveModel(model string) string {
	if model == "" {
		model = c.opts.DefaultModel
	}
	if model == ModelAuto {
		return FallbackOrder[0]
	}
	return model
}
