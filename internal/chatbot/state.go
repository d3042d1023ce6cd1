// Package chatbot drives the refinancing conversation: one state record per
// chat identity, advanced turn by turn from inbound text.
package chatbot

import (
	"time"

	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/profile"
)

// Phase is a conversation state. Transitions are linear with two parallel
// branches after path selection.
type Phase string

const (
	PhaseStart           Phase = "GET_STARTED"
	PhaseCollectReferral Phase = "REFERRAL_COLLECTION"
	PhaseLanguageSelect  Phase = "LANGUAGE_SELECTION"
	PhaseCollectName     Phase = "NAME_COLLECTION"
	PhaseChoosePath      Phase = "PATH_SELECTION"

	PhasePathAAmount Phase = "PATH_A_LOAN_AMOUNT"
	PhasePathATenure Phase = "PATH_A_TENURE"
	PhasePathARate   Phase = "PATH_A_INTEREST_RATE"

	PhasePathBAmount    Phase = "PATH_B_ORIGINAL_LOAN_AMOUNT"
	PhasePathBTenure    Phase = "PATH_B_ORIGINAL_TENURE"
	PhasePathBPayment   Phase = "PATH_B_MONTHLY_PAYMENT"
	PhasePathBYearsPaid Phase = "PATH_B_YEARS_PAID"

	PhaseDone Phase = "DONE"
)

// Profile is the data a conversation accumulates. Exactly one of the Path A
// or Path B field sets is populated per completed conversation.
type Profile struct {
	Name         string `json:"name,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`

	// Path A.
	LoanAmount   float64 `json:"loan_amount,omitempty"`
	Tenure       int     `json:"tenure,omitempty"`
	InterestRate float64 `json:"interest_rate,omitempty"`

	// Path B.
	OriginalLoanAmount float64 `json:"original_loan_amount,omitempty"`
	OriginalTenure     int     `json:"original_tenure,omitempty"`
	MonthlyPayment     float64 `json:"monthly_payment,omitempty"`
	YearsPaid          int     `json:"years_paid,omitempty"`

	// Computed on completion.
	MonthlySavings      float64 `json:"monthly_savings,omitempty"`
	YearlySavings       float64 `json:"yearly_savings,omitempty"`
	LifetimeSavings     float64 `json:"lifetime_savings,omitempty"`
	NewMonthlyRepayment float64 `json:"new_monthly_repayment,omitempty"`
	LenderName          string  `json:"lender_name,omitempty"`
	OutstandingBalance  float64 `json:"outstanding_balance,omitempty"`
	CurrentRepayment    float64 `json:"current_repayment,omitempty"`
}

// Session is one chat identity's live conversation state. It is owned by the
// session store and mutated only by the engine during a turn.
type Session struct {
	ChatID        string        `json:"chat_id"`
	Phase         Phase         `json:"phase"`
	Language      i18n.Language `json:"language"`
	Profile       Profile       `json:"profile"`
	LeadSubmitted bool          `json:"lead_submitted"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewSession creates a fresh session for a chat identity. The phone number is
// derived from the identity, which for WhatsApp is the sender's number.
func NewSession(chatID string) *Session {
	return &Session{
		ChatID:   chatID,
		Phase:    PhaseStart,
		Language: i18n.DefaultLanguage,
		Profile:  Profile{PhoneNumber: phoneFromChatID(chatID)},
	}
}

// Reset returns the session to the start of the flow, keeping only the chat
// identity, phone number, and any already-known referral code.
func (s *Session) Reset() {
	referral := s.Profile.ReferralCode
	s.Phase = PhaseStart
	s.Language = i18n.DefaultLanguage
	s.Profile = Profile{
		PhoneNumber:  phoneFromChatID(s.ChatID),
		ReferralCode: referral,
	}
	s.LeadSubmitted = false
}

// Record builds the durable profile mirror for this session. The mirror's
// monthly payment column holds the user's current repayment whichever path
// produced it.
func (s *Session) Record(now time.Time) *profile.Record {
	monthlyPayment := s.Profile.MonthlyPayment
	if monthlyPayment == 0 {
		monthlyPayment = s.Profile.CurrentRepayment
	}
	return &profile.Record{
		ChatID:              s.ChatID,
		Name:                s.Profile.Name,
		PhoneNumber:         s.Profile.PhoneNumber,
		ReferralCode:        s.Profile.ReferralCode,
		Language:            string(s.Language),
		LoanAmount:          s.Profile.LoanAmount,
		Tenure:              s.Profile.Tenure,
		InterestRate:        s.Profile.InterestRate,
		OriginalLoanAmount:  s.Profile.OriginalLoanAmount,
		OriginalTenure:      s.Profile.OriginalTenure,
		MonthlyPayment:      monthlyPayment,
		YearsPaid:           s.Profile.YearsPaid,
		MonthlySavings:      s.Profile.MonthlySavings,
		YearlySavings:       s.Profile.YearlySavings,
		LifetimeSavings:     s.Profile.LifetimeSavings,
		NewMonthlyRepayment: s.Profile.NewMonthlyRepayment,
		LenderName:          s.Profile.LenderName,
		OutstandingBalance:  s.Profile.OutstandingBalance,
		LastInteraction:     now,
	}
}

// phoneFromChatID strips a channel suffix like "@c.us" if present.
func phoneFromChatID(chatID string) string {
	for i := 0; i < len(chatID); i++ {
		if chatID[i] == '@' {
			return chatID[:i]
		}
	}
	return chatID
}
