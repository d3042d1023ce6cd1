package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/quantifyai/refibot/internal/observability/metrics"
	"github.com/quantifyai/refibot/pkg/logging"
)

// WebhookHandler receives WhatsApp Cloud API callbacks: the one-time GET
// subscription verification and the POST event notifications.
type WebhookHandler struct {
	dispatch    func(chatID, text string)
	verifyToken string
	metrics     *metrics.ChatbotMetrics
	logger      *logging.Logger
}

// NewWebhookHandler creates a webhook handler. dispatch is called once per
// inbound text message and must be safe for concurrent use.
func NewWebhookHandler(dispatch func(chatID, text string), verifyToken string, m *metrics.ChatbotMetrics, logger *logging.Logger) *WebhookHandler {
	if dispatch == nil {
		panic("handlers: dispatch function required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		dispatch:    dispatch,
		verifyToken: verifyToken,
		metrics:     m,
		logger:      logger,
	}
}

// Verify answers the Meta webhook verification handshake.
// GET /webhook?hub.mode=subscribe&hub.verify_token=...&hub.challenge=...
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.metrics.ObserveWebhookLatency(http.MethodGet, time.Since(start).Seconds()) }()

	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || challenge == "" {
		http.Error(w, "bad verification request", http.StatusBadRequest)
		return
	}
	if h.verifyToken == "" || token != h.verifyToken {
		h.logger.Warn("webhook verification rejected", "mode", mode)
		http.Error(w, "verification failed", http.StatusForbidden)
		return
	}

	h.logger.Info("webhook verified")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// webhookEvent mirrors the subset of the WhatsApp Cloud API notification
// payload the bot consumes.
type webhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Receive accepts event notifications and routes each text message to the
// dispatcher. Always returns 200 for recognized payloads so Meta does not
// retry events the bot has already consumed.
// POST /webhook
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.metrics.ObserveWebhookLatency(http.MethodPost, time.Since(start).Seconds()) }()

	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if event.Object != "whatsapp_business_account" {
		http.Error(w, "unknown event object", http.StatusNotFound)
		return
	}

	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.From == "" || msg.Text.Body == "" {
					continue
				}
				h.dispatch(msg.From, msg.Text.Body)
			}
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Event received"))
}
