// Package rates resolves the best available refinancing rate for a loan
// amount. Lookups never fail from the caller's perspective: every source
// degrades to a configured default quote.
package rates

import "context"

// Quote is a lender offer for a given loan amount.
type Quote struct {
	Rate       float64
	LenderName string
}

// Source yields the best quote for a loan amount.
type Source interface {
	BestRate(ctx context.Context, loanAmount float64) Quote
}

// StaticSource applies the fixed rate tiering used when no rate table is
// available: smaller loans price slightly higher.
type StaticSource struct {
	LenderName      string
	Rate            float64
	SmallLoanRate   float64
	SmallLoanCutoff float64
}

// BestRate returns the tiered static quote.
func (s StaticSource) BestRate(_ context.Context, loanAmount float64) Quote {
	rate := s.Rate
	if loanAmount < s.SmallLoanCutoff {
		rate = s.SmallLoanRate
	}
	return Quote{Rate: rate, LenderName: s.LenderName}
}
