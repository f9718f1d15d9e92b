package telegram

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// maxWebhookBody bounds webhook request bodies. Telegram updates are small;
// 1 MiB leaves generous headroom.
const maxWebhookBody = 1 << 20

// WebhookReceiver turns incoming webhook HTTP requests into handled updates.
// It implements http.Handler and is mounted on the gateway.
type WebhookReceiver struct {
	handler UpdateHandler
	logger  *slog.Logger
	secret  string
}

// NewWebhookReceiver creates a WebhookReceiver. When secret is non-empty,
// requests must carry a matching X-Telegram-Bot-Api-Secret-Token header.
func NewWebhookReceiver(handler UpdateHandler, logger *slog.Logger, secret string) *WebhookReceiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookReceiver{
		handler: handler,
		logger:  logger,
		secret:  secret,
	}
}

// ServeHTTP validates the secret token, decodes the update, and dispatches
// it. Telegram retries deliveries on non-2xx responses, so handler errors
// are logged rather than surfaced — a poison update must not wedge the queue.
func (w *WebhookReceiver) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if w.secret != "" {
		token := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(w.secret), []byte(token)) != 1 {
			w.logger.Warn("webhook secret token mismatch", "remote", r.RemoteAddr)
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(rw, "read error", http.StatusBadRequest)
		return
	}

	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		w.logger.Warn("invalid webhook update JSON", "error", err)
		http.Error(rw, "bad request", http.StatusBadRequest)
		return
	}

	w.handler(r.Context(), &update)
	rw.WriteHeader(http.StatusOK)
}
