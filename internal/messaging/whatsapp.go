package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quantifyai/refibot/pkg/logging"
)

// WhatsAppConfig holds WhatsApp Cloud API credentials.
type WhatsAppConfig struct {
	BaseURL       string // e.g. https://graph.facebook.com/v21.0
	AccessToken   string
	PhoneNumberID string
	Timeout       time.Duration
}

// WhatsAppClient sends text messages through the Cloud API messages endpoint.
type WhatsAppClient struct {
	cfg        WhatsAppConfig
	httpClient *http.Client
	logger     *logging.Logger
}

type whatsAppTextPayload struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppTextBody struct {
	Body string `json:"body"`
}

// NewWhatsAppClient creates a Cloud API messenger.
func NewWhatsAppClient(cfg WhatsAppConfig, logger *logging.Logger) (*WhatsAppClient, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("messaging: whatsapp access token is required")
	}
	if strings.TrimSpace(cfg.PhoneNumberID) == "" {
		return nil, errors.New("messaging: whatsapp phone number id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com/v21.0"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WhatsAppClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// SendText posts a text message to the recipient.
func (c *WhatsAppClient) SendText(ctx context.Context, to, body string) error {
	if to == "" {
		return errors.New("messaging: recipient required")
	}
	if body == "" {
		return errors.New("messaging: message body required")
	}

	payload, err := json.Marshal(whatsAppTextPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             whatsAppTextBody{Body: body},
	})
	if err != nil {
		return fmt.Errorf("messaging: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("messaging: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("messaging: whatsapp send failed", "to", to, "error", err)
		return fmt.Errorf("messaging: whatsapp send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("messaging: whatsapp returned error status",
			"to", to,
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return fmt.Errorf("messaging: whatsapp returned status %d", resp.StatusCode)
	}

	c.logger.Info("messaging: message sent", "to", to)
	return nil
}
