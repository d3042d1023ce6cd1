// Package messaging sends outbound chat messages through the WhatsApp Cloud
// API.
package messaging

import (
	"context"

	"github.com/quantifyai/refibot/pkg/logging"
)

// Messenger delivers a text message to a chat identity.
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
}

// StubMessenger logs instead of sending. Used when no WhatsApp credentials
// are configured.
type StubMessenger struct {
	logger *logging.Logger
}

// NewStubMessenger creates a stub messenger.
func NewStubMessenger(logger *logging.Logger) *StubMessenger {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubMessenger{logger: logger}
}

// SendText logs the message without sending it.
func (s *StubMessenger) SendText(_ context.Context, to, body string) error {
	s.logger.Info("stub messenger: would send", "to", to, "body_preview", truncate(body, 80))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ Messenger = (*StubMessenger)(nil)
var _ Messenger = (*WhatsAppClient)(nil)
