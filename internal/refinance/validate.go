package refinance

import (
	"github.com/quantifyai/refibot/internal/i18n"
)

// Limits carries the business thresholds for input validation. They are
// configuration constants, not hardcoded checks, so product can retune them
// without touching the flow logic.
type Limits struct {
	LoanAmountMin float64
	LoanAmountMax float64
	TenureAMin    int
	TenureAMax    int
	TenureBMin    int
	TenureBMax    int
	RateMin       float64
	RateMax       float64
	RepaymentMin  float64
	RepaymentMax  float64
}

// DefaultLimits are the production thresholds.
var DefaultLimits = Limits{
	LoanAmountMin: 100000,
	LoanAmountMax: 30000000,
	TenureAMin:    5,
	TenureAMax:    35,
	TenureBMin:    10,
	TenureBMax:    35,
	RateMin:       3,
	RateMax:       8,
	RepaymentMin:  500,
	RepaymentMax:  60000,
}

// Validation is the outcome of a field check. Message is localized and only
// set when Valid is false.
type Validation struct {
	Valid   bool
	Message string
}

func valid() Validation {
	return Validation{Valid: true}
}

func invalid(key i18n.Key, lang i18n.Language) Validation {
	return Validation{Valid: false, Message: i18n.T(key, lang)}
}

// ValidateLoanAmount checks a loan amount for either path.
func (l Limits) ValidateLoanAmount(amount float64, lang i18n.Language) Validation {
	if amount != amount || amount < l.LoanAmountMin || amount > l.LoanAmountMax {
		return invalid(i18n.KeyErrLoanAmount, lang)
	}
	return valid()
}

// ValidateTenureA checks a Path A remaining tenure.
func (l Limits) ValidateTenureA(tenure int, lang i18n.Language) Validation {
	if tenure < l.TenureAMin || tenure > l.TenureAMax {
		return invalid(i18n.KeyErrTenure, lang)
	}
	return valid()
}

// ValidateTenureB checks a Path B original tenure.
func (l Limits) ValidateTenureB(tenure int, lang i18n.Language) Validation {
	if tenure < l.TenureBMin || tenure > l.TenureBMax {
		return invalid(i18n.KeyErrTenure, lang)
	}
	return valid()
}

// ValidateInterestRate checks a Path A current interest rate.
func (l Limits) ValidateInterestRate(rate float64, lang i18n.Language) Validation {
	if rate != rate || rate < l.RateMin || rate > l.RateMax {
		return invalid(i18n.KeyErrRate, lang)
	}
	return valid()
}

// ValidateRepayment checks a Path B monthly repayment.
func (l Limits) ValidateRepayment(repayment float64, lang i18n.Language) Validation {
	if repayment != repayment || repayment < l.RepaymentMin || repayment > l.RepaymentMax {
		return invalid(i18n.KeyErrRepayment, lang)
	}
	return valid()
}

// ValidateYearsPaid checks Path B years paid against the original tenure.
func (l Limits) ValidateYearsPaid(yearsPaid, originalTenure int, lang i18n.Language) Validation {
	if yearsPaid < 0 || yearsPaid >= originalTenure {
		return invalid(i18n.KeyErrYearsPaid, lang)
	}
	return valid()
}

// PathAInput is the full Path A field set.
type PathAInput struct {
	LoanAmount   float64
	Tenure       int
	InterestRate float64
}

// PathBInput is the full Path B field set.
type PathBInput struct {
	OriginalLoanAmount float64
	OriginalTenure     int
	MonthlyPayment     float64
	YearsPaid          int
}

// ValidatePathA runs the Path A field validators in order, short-circuiting
// on the first failure.
func (l Limits) ValidatePathA(in PathAInput, lang i18n.Language) Validation {
	if v := l.ValidateLoanAmount(in.LoanAmount, lang); !v.Valid {
		return v
	}
	if v := l.ValidateTenureA(in.Tenure, lang); !v.Valid {
		return v
	}
	if v := l.ValidateInterestRate(in.InterestRate, lang); !v.Valid {
		return v
	}
	return valid()
}

// ValidatePathB runs the Path B field validators in order, short-circuiting
// on the first failure.
func (l Limits) ValidatePathB(in PathBInput, lang i18n.Language) Validation {
	if v := l.ValidateLoanAmount(in.OriginalLoanAmount, lang); !v.Valid {
		return v
	}
	if v := l.ValidateTenureB(in.OriginalTenure, lang); !v.Valid {
		return v
	}
	if v := l.ValidateRepayment(in.MonthlyPayment, lang); !v.Valid {
		return v
	}
	if v := l.ValidateYearsPaid(in.YearsPaid, in.OriginalTenure, lang); !v.Valid {
		return v
	}
	return valid()
}
