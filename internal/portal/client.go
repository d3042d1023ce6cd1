// Package portal submits qualified leads to the CRM portal.
package portal

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

// ErrMissingFields is returned when a lead lacks the phone number or loan
// amount the portal requires.
var ErrMissingFields = errors.New("portal: lead missing phone or loan amount")

// Lead is the payload the portal accepts.
type Lead struct {
	ReferrerCode     string  `json:"referrer_code"`
	Phone            string  `json:"phone"`
	LoanAmount       float64 `json:"loan_amount"`
	EstimatedSavings float64 `json:"estimated_savings"`
}

// Submitter is what the conversation engine depends on.
type Submitter interface {
	Submit(ctx context.Context, lead Lead) error
}

// Client posts leads over HTTPS with a bounded retry loop.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	logger     *logging.Logger
}

// NewClient creates a portal client. The API key is trimmed because deploy
// tooling has shipped it with trailing whitespace before.
func NewClient(url, apiKey string, maxRetries int, timeout time.Duration, logger *logging.Logger) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		url:        url,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Submit posts the lead, retrying transient failures up to maxRetries
// attempts total. Missing required fields fail fast without a request.
func (c *Client) Submit(ctx context.Context, lead Lead) error {
	if lead.Phone == "" || lead.LoanAmount <= 0 {
		return ErrMissingFields
	}
	if lead.ReferrerCode == "" {
		lead.ReferrerCode = "N/A"
	}

	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("portal: marshal lead: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("portal: submit aborted: %w", err)
		}

		lastErr = c.post(ctx, body)
		if lastErr == nil {
			c.logger.Info("portal: lead submitted",
				"phone", lead.Phone,
				"loan_amount", lead.LoanAmount,
				"attempt", attempt,
			)
			return nil
		}
		c.logger.Warn("portal: lead submission failed",
			"attempt", attempt,
			"max_attempts", c.maxRetries,
			"error", lastErr,
		)
	}
	return fmt.Errorf("portal: giving up after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("portal: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("portal: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("portal: unexpected status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
