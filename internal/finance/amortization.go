// Package finance contains the closed-form loan amortization math used by the
// refinance calculators. All functions are pure; failures are explicit values.
package finance

import (
	"errors"
	"math"
)

var (
	// ErrInvalidPrincipal is returned when the loan principal is not positive
	ErrInvalidPrincipal = errors.New("finance: principal must be positive")

	// ErrInvalidTerm is returned when the loan term is not positive
	ErrInvalidTerm = errors.New("finance: term must be positive")
)

const (
	rateMaxIterations = 100
	rateTolerance     = 1e-6
)

// MonthlyPayment computes the fixed monthly repayment for a loan using the
// standard annuity formula. annualRatePercent is expressed as e.g. 4.5 for
// 4.5%. A zero rate degrades to straight-line repayment.
func MonthlyPayment(principal, annualRatePercent float64, termYears int) (float64, error) {
	if principal <= 0 {
		return 0, ErrInvalidPrincipal
	}
	if termYears <= 0 {
		return 0, ErrInvalidTerm
	}

	n := float64(termYears * 12)
	r := annualRatePercent / 100 / 12
	if r == 0 {
		return principal / n, nil
	}

	growth := math.Pow(1+r, n)
	return principal * r * growth / (growth - 1), nil
}

// EstimateAnnualRate recovers the implied annual rate (in percent) from an
// observed monthly payment by bisection over the monthly fraction in [0, 1).
// The payment is strictly increasing in the rate, which makes the bisection
// sound. The second return is false when the search does not converge within
// the iteration budget; callers must treat that as "unable to estimate".
func EstimateAnnualRate(principal float64, termYears int, observedMonthlyPayment float64) (float64, bool) {
	if principal <= 0 || termYears <= 0 || observedMonthlyPayment <= 0 {
		return 0, false
	}

	n := float64(termYears * 12)
	low, high := 0.0, 1.0
	r := (low + high) / 2

	for i := 0; i < rateMaxIterations; i++ {
		var implied float64
		if r == 0 {
			implied = principal / n
		} else {
			growth := math.Pow(1+r, n)
			implied = principal * r * growth / (growth - 1)
		}

		if math.Abs(implied-observedMonthlyPayment) < rateTolerance {
			return r * 12 * 100, true
		}

		if implied > observedMonthlyPayment {
			high = r
		} else {
			low = r
		}
		r = (low + high) / 2
	}

	return 0, false
}

// Balance is the projection returned by OutstandingBalance.
type Balance struct {
	Outstanding float64
	ImpliedRate float64
}

// OutstandingBalance projects the remaining balance of a loan given its
// original terms, the observed monthly payment, and the years already paid.
// The implied rate is recovered with EstimateAnnualRate; when that fails the
// second return is false and the projection must not be used.
func OutstandingBalance(principal float64, termYears int, monthlyPayment float64, yearsPaid int) (Balance, bool) {
	rate, ok := EstimateAnnualRate(principal, termYears, monthlyPayment)
	if !ok {
		return Balance{}, false
	}

	r := rate / 100 / 12
	n := float64(termYears * 12)
	p := float64(yearsPaid * 12)

	var outstanding float64
	if r == 0 {
		outstanding = principal * (n - p) / n
	} else {
		growthN := math.Pow(1+r, n)
		growthP := math.Pow(1+r, p)
		outstanding = principal * (growthN - growthP) / (growthN - 1)
	}

	return Balance{
		Outstanding: Round2(outstanding),
		ImpliedRate: Round2(rate),
	}, true
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
