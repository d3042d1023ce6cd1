// Package profile stores the durable mirror of everything a conversation has
// collected. The session store owns the live state; this repository is the
// copy that survives restarts and feeds the admin views.
package profile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when no profile exists for a chat identity.
var ErrNotFound = errors.New("profile: not found")

// Record is one user's accumulated refinancing profile, keyed by the chat
// identity. Numeric fields hold zero until the conversation collects them.
type Record struct {
	ChatID       string    `json:"chat_id"`
	Name         string    `json:"name"`
	PhoneNumber  string    `json:"phone_number"`
	ReferralCode string    `json:"referral_code"`
	Language     string    `json:"language"`

	LoanAmount   float64 `json:"loan_amount"`
	Tenure       int     `json:"tenure"`
	InterestRate float64 `json:"interest_rate"`

	OriginalLoanAmount float64 `json:"original_loan_amount"`
	OriginalTenure     int     `json:"original_tenure"`
	MonthlyPayment     float64 `json:"monthly_payment"`
	YearsPaid          int     `json:"years_paid"`

	MonthlySavings      float64 `json:"monthly_savings"`
	YearlySavings       float64 `json:"yearly_savings"`
	LifetimeSavings     float64 `json:"lifetime_savings"`
	NewMonthlyRepayment float64 `json:"new_monthly_repayment"`
	LenderName          string  `json:"lender_name"`
	OutstandingBalance  float64 `json:"outstanding_balance"`

	LastInteraction time.Time `json:"last_interaction"`
}

// Repository is the durable profile mirror.
type Repository interface {
	Upsert(ctx context.Context, rec *Record) error
	Get(ctx context.Context, chatID string) (*Record, error)
	List(ctx context.Context, limit int) ([]*Record, error)
}

// InMemoryRepository keeps profiles in a map. Used in tests and when no
// database is configured.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Record
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{profiles: make(map[string]Record)}
}

// Upsert stores a copy of the record.
func (r *InMemoryRepository) Upsert(_ context.Context, rec *Record) error {
	if rec == nil || rec.ChatID == "" {
		return errors.New("profile: chat id required")
	}
	r.mu.Lock()
	r.profiles[rec.ChatID] = *rec
	r.mu.Unlock()
	return nil
}

// Get returns the record for a chat identity.
func (r *InMemoryRepository) Get(_ context.Context, chatID string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.profiles[chatID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// List returns up to limit records, most recently active first.
func (r *InMemoryRepository) List(_ context.Context, limit int) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Record, 0, len(r.profiles))
	for _, rec := range r.profiles {
		copied := rec
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastInteraction.After(out[j].LastInteraction)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
