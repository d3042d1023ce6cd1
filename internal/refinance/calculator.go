// Package refinance implements the two savings pipelines: Path A for users
// who know their current loan terms, Path B for users who only know the
// original terms and their payment history.
package refinance

import (
	"context"
	"errors"

	"github.com/quantifyai/refibot/internal/finance"
	"github.com/quantifyai/refibot/internal/rates"
	"github.com/quantifyai/refibot/pkg/logging"
)

// ErrEstimationFailed is returned when the implied current interest rate
// cannot be recovered from the user's payment history.
var ErrEstimationFailed = errors.New("refinance: unable to estimate current interest rate")

// DisqualifyReason explains why a result was gated as non-beneficial.
type DisqualifyReason string

const (
	ReasonNone           DisqualifyReason = ""
	ReasonNoSavings      DisqualifyReason = "no_savings"
	ReasonBelowThreshold DisqualifyReason = "below_threshold"
)

// DisqualifiedLender is the sentinel lender name on gated results.
const DisqualifiedLender = "N/A"

// Savings is the outcome of a refinance calculation. All monetary fields are
// rounded to two decimals. A non-beneficial outcome is a valid result, not an
// error: the savings fields are zeroed, the lender is the "N/A" sentinel, and
// Reason records why.
type Savings struct {
	MonthlySavings      float64
	YearlySavings       float64
	LifetimeSavings     float64
	NewMonthlyRepayment float64
	NewInterestRate     float64
	LenderName          string
	CurrentRepayment    float64

	// Path B only.
	OutstandingBalance  float64
	CurrentInterestRate float64

	Beneficial bool
	Reason     DisqualifyReason
}

// Calculator combines the amortization library with a rate source.
type Calculator struct {
	rates              rates.Source
	minLifetimeSavings float64
	logger             *logging.Logger
}

// NewCalculator creates a calculator. minLifetimeSavings is the policy floor
// below which a result is flagged as not worth pursuing.
func NewCalculator(src rates.Source, minLifetimeSavings float64, logger *logging.Logger) *Calculator {
	if src == nil {
		panic("refinance: rate source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Calculator{
		rates:              src,
		minLifetimeSavings: minLifetimeSavings,
		logger:             logger,
	}
}

// PathA computes savings when the user knows their current loan amount,
// remaining tenure, and current rate.
func (c *Calculator) PathA(ctx context.Context, loanAmount float64, tenure int, currentRate float64) (*Savings, error) {
	currentPayment, err := finance.MonthlyPayment(loanAmount, currentRate, tenure)
	if err != nil {
		return nil, err
	}

	quote := c.rates.BestRate(ctx, loanAmount)
	newPayment, err := finance.MonthlyPayment(loanAmount, quote.Rate, tenure)
	if err != nil {
		return nil, err
	}

	monthly := currentPayment - newPayment
	result := &Savings{
		MonthlySavings:      finance.Round2(monthly),
		YearlySavings:       finance.Round2(monthly * 12),
		LifetimeSavings:     finance.Round2(monthly * 12 * float64(tenure)),
		NewMonthlyRepayment: finance.Round2(newPayment),
		NewInterestRate:     finance.Round2(quote.Rate),
		LenderName:          quote.LenderName,
		CurrentRepayment:    finance.Round2(currentPayment),
	}
	c.gate(result)

	c.logger.Info("refinance: path A computed",
		"loan_amount", loanAmount,
		"tenure", tenure,
		"monthly_savings", result.MonthlySavings,
		"lifetime_savings", result.LifetimeSavings,
		"beneficial", result.Beneficial,
	)
	return result, nil
}

// PathB computes savings from the original loan terms and payment history.
// The current rate is inferred by bisection; if that fails the pipeline stops
// with ErrEstimationFailed.
func (c *Calculator) PathB(ctx context.Context, originalLoanAmount float64, originalTenure int, monthlyPayment float64, yearsPaid int) (*Savings, error) {
	balance, ok := finance.OutstandingBalance(originalLoanAmount, originalTenure, monthlyPayment, yearsPaid)
	if !ok || balance.Outstanding <= 0 {
		c.logger.Warn("refinance: rate estimation failed",
			"original_loan_amount", originalLoanAmount,
			"original_tenure", originalTenure,
			"monthly_payment", monthlyPayment,
		)
		return nil, ErrEstimationFailed
	}

	remainingTenure := originalTenure - yearsPaid
	quote := c.rates.BestRate(ctx, balance.Outstanding)
	newPayment, err := finance.MonthlyPayment(balance.Outstanding, quote.Rate, remainingTenure)
	if err != nil {
		return nil, err
	}

	monthly := monthlyPayment - newPayment
	result := &Savings{
		MonthlySavings:      finance.Round2(monthly),
		YearlySavings:       finance.Round2(monthly * 12),
		LifetimeSavings:     finance.Round2(monthly * 12 * float64(remainingTenure)),
		NewMonthlyRepayment: finance.Round2(newPayment),
		NewInterestRate:     finance.Round2(quote.Rate),
		LenderName:          quote.LenderName,
		CurrentRepayment:    finance.Round2(monthlyPayment),
		OutstandingBalance:  balance.Outstanding,
		CurrentInterestRate: balance.ImpliedRate,
	}
	c.gate(result)

	c.logger.Info("refinance: path B computed",
		"outstanding_balance", balance.Outstanding,
		"implied_rate", balance.ImpliedRate,
		"monthly_savings", result.MonthlySavings,
		"lifetime_savings", result.LifetimeSavings,
		"beneficial", result.Beneficial,
	)
	return result, nil
}

// gate applies the non-beneficial policy: savings that are negative, zero, or
// below the lifetime floor are zeroed out so no real numbers leak into a lead.
// The Path B balance projection survives gating; it describes the existing
// loan, not the offer.
func (c *Calculator) gate(s *Savings) {
	switch {
	case s.MonthlySavings <= 0:
		s.Reason = ReasonNoSavings
	case s.LifetimeSavings < c.minLifetimeSavings:
		s.Reason = ReasonBelowThreshold
	default:
		s.Beneficial = true
		s.Reason = ReasonNone
		return
	}

	s.MonthlySavings = 0
	s.YearlySavings = 0
	s.LifetimeSavings = 0
	s.NewMonthlyRepayment = 0
	s.NewInterestRate = 0
	s.LenderName = DisqualifiedLender
	s.Beneficial = false
}
