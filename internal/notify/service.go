package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/messaging"
	"github.com/quantifyai/refibot/internal/profile"
	"github.com/quantifyai/refibot/pkg/logging"
)

// Service delivers lead alerts to the admin over chat, with an optional email
// copy. Alert failures are logged and never block the conversation.
type Service struct {
	messenger   messaging.Messenger
	adminChatID string
	email       EmailSender
	adminEmail  string
	logger      *logging.Logger
}

// NewService creates a notification service. messenger and email may each be
// nil; the corresponding channel is skipped.
func NewService(messenger messaging.Messenger, adminChatID string, email EmailSender, adminEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		messenger:   messenger,
		adminChatID: adminChatID,
		email:       email,
		adminEmail:  adminEmail,
		logger:      logger,
	}
}

// NotifyNewLead sends the lead summary to the configured channels.
func (s *Service) NotifyNewLead(ctx context.Context, rec *profile.Record) {
	if s == nil || rec == nil {
		return
	}
	summary := BuildLeadAlert(rec)

	if s.messenger != nil && s.adminChatID != "" {
		if err := s.messenger.SendText(ctx, s.adminChatID, summary); err != nil {
			s.logger.Error("notify: admin chat alert failed", "error", err, "chat_id", rec.ChatID)
		} else {
			s.logger.Info("notify: admin chat alert sent", "chat_id", rec.ChatID)
		}
	}

	if s.email != nil && s.adminEmail != "" {
		msg := EmailMessage{
			To:      s.adminEmail,
			Subject: fmt.Sprintf("New Lead - %s", nameOr(rec.Name)),
			Body:    summary,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: admin email alert failed", "error", err, "chat_id", rec.ChatID)
		}
	}
}

// BuildLeadAlert renders the admin-facing lead summary.
func BuildLeadAlert(rec *profile.Record) string {
	loanAmount := rec.LoanAmount
	if loanAmount == 0 {
		loanAmount = rec.OriginalLoanAmount
	}
	currentRepayment := rec.MonthlyPayment
	rate := "Not provided"
	if rec.InterestRate > 0 {
		rate = fmt.Sprintf("%.2f%%", rec.InterestRate)
	}
	lang := rec.Language
	if lang == "" {
		lang = "en"
	}

	var b strings.Builder
	b.WriteString("🚨 *New Lead Alert* 🚨\n\n")
	b.WriteString("📋 *Customer Details*:\n")
	fmt.Fprintf(&b, "- *Name*: %s\n", nameOr(rec.Name))
	fmt.Fprintf(&b, "- *Contact Number*: %s\n\n", nameOr(rec.PhoneNumber))
	b.WriteString("💰 *Loan Information*:\n")
	fmt.Fprintf(&b, "- *Loan Size*: %s\n", i18n.FormatMYR(loanAmount))
	fmt.Fprintf(&b, "- *Current Interest Rate*: %s\n", rate)
	fmt.Fprintf(&b, "- *Current Monthly Repayment*: %s\n", i18n.FormatMYR(currentRepayment))
	fmt.Fprintf(&b, "- *New Monthly Repayment*: %s\n\n", i18n.FormatMYR(rec.NewMonthlyRepayment))
	b.WriteString("📈 *Savings Analysis*:\n")
	fmt.Fprintf(&b, "- *Monthly Savings*: %s\n", i18n.FormatMYR(rec.MonthlySavings))
	fmt.Fprintf(&b, "- *Yearly Savings*: %s\n", i18n.FormatMYR(rec.YearlySavings))
	fmt.Fprintf(&b, "- *Lifetime Savings*: %s\n\n", i18n.FormatMYR(rec.LifetimeSavings))
	fmt.Fprintf(&b, "🌐 *Language Preference*: %s", lang)
	return b.String()
}

func nameOr(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}
