// Package metrics defines the Prometheus instrumentation shared by the bot
// and the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the bot's Prometheus collectors. All fields are safe for
// concurrent use.
type Metrics struct {
	// MessagesReceived counts inbound Telegram messages by kind
	// (text, command, document, photo, voice, video, audio).
	MessagesReceived *prometheus.CounterVec

	// Completions counts finished LLM completions by model and outcome
	// ("ok" or "error").
	Completions *prometheus.CounterVec

	// CompletionLatency observes completion wall time in seconds by model.
	CompletionLatency *prometheus.HistogramVec

	// TokensUsed counts tokens reported by the provider, by direction
	// ("prompt" or "completion").
	TokensUsed *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers the bot's collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgaibot",
			Name:      "messages_received_total",
			Help:      "Inbound Telegram messages by kind.",
		}, []string{"kind"}),

		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgaibot",
			Name:      "completions_total",
			Help:      "LLM completions by model and outcome.",
		}, []string{"model", "outcome"}),

		CompletionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tgaibot",
			Name:      "completion_seconds",
			Help:      "LLM completion latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"model"}),

		TokensUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgaibot",
			Name:      "tokens_total",
			Help:      "Tokens consumed, by direction.",
		}, []string{"direction"}),

		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.MessagesReceived,
		m.Completions,
		m.CompletionLatency,
		m.TokensUsed,
	)

	return m
}

// Registry exposes the underlying registry for the gateway's /metrics
// handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
