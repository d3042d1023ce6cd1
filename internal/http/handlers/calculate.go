package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/profile"
	"github.com/quantifyai/refibot/internal/refinance"
	"github.com/quantifyai/refibot/pkg/logging"
)

// CalculateHandler exposes the savings calculators over plain REST for
// partners that embed the estimate outside the chat flow.
type CalculateHandler struct {
	calc     *refinance.Calculator
	limits   refinance.Limits
	profiles profile.Repository
	logger   *logging.Logger
}

// NewCalculateHandler creates a calculate handler. profiles may be nil when
// results should not be persisted.
func NewCalculateHandler(calc *refinance.Calculator, limits refinance.Limits, profiles profile.Repository, logger *logging.Logger) *CalculateHandler {
	if calc == nil {
		panic("handlers: calculator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CalculateHandler{
		calc:     calc,
		limits:   limits,
		profiles: profiles,
		logger:   logger,
	}
}

// CalculateRequest carries either a Path A field set (loan_amount, tenure,
// interest_rate) or a Path B field set (original_loan_amount,
// original_tenure, monthly_payment, years_paid). The populated set picks the
// path.
type CalculateRequest struct {
	Phone    string `json:"phone,omitempty"`
	Name     string `json:"name,omitempty"`
	Language string `json:"language,omitempty"`

	LoanAmount   float64 `json:"loan_amount,omitempty"`
	Tenure       int     `json:"tenure,omitempty"`
	InterestRate float64 `json:"interest_rate,omitempty"`

	OriginalLoanAmount float64 `json:"original_loan_amount,omitempty"`
	OriginalTenure     int     `json:"original_tenure,omitempty"`
	MonthlyPayment     float64 `json:"monthly_payment,omitempty"`
	YearsPaid          int     `json:"years_paid,omitempty"`
}

// CalculateResponse is the calculation outcome. Beneficial false means the
// refinance does not clear the savings policy, not a failure.
type CalculateResponse struct {
	Path                string  `json:"path"`
	Beneficial          bool    `json:"beneficial"`
	Reason              string  `json:"reason,omitempty"`
	MonthlySavings      float64 `json:"monthly_savings"`
	YearlySavings       float64 `json:"yearly_savings"`
	LifetimeSavings     float64 `json:"lifetime_savings"`
	NewMonthlyRepayment float64 `json:"new_monthly_repayment"`
	NewInterestRate     float64 `json:"new_interest_rate"`
	LenderName          string  `json:"lender_name"`
	OutstandingBalance  float64 `json:"outstanding_balance,omitempty"`
	CurrentInterestRate float64 `json:"current_interest_rate,omitempty"`
}

// Calculate validates the request, runs the matching path, and optionally
// mirrors the result into the profile store when a phone is supplied.
// POST /calculate
func (h *CalculateHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lang := i18n.Language(req.Language)
	if !i18n.Supported(lang) {
		lang = i18n.DefaultLanguage
	}

	var (
		result *refinance.Savings
		path   string
		err    error
	)
	switch {
	case req.LoanAmount > 0 || req.InterestRate > 0:
		path = "A"
		in := refinance.PathAInput{
			LoanAmount:   req.LoanAmount,
			Tenure:       req.Tenure,
			InterestRate: req.InterestRate,
		}
		if v := h.limits.ValidatePathA(in, lang); !v.Valid {
			writeJSONError(w, v.Message, http.StatusUnprocessableEntity)
			return
		}
		result, err = h.calc.PathA(r.Context(), in.LoanAmount, in.Tenure, in.InterestRate)
	case req.OriginalLoanAmount > 0:
		path = "B"
		in := refinance.PathBInput{
			OriginalLoanAmount: req.OriginalLoanAmount,
			OriginalTenure:     req.OriginalTenure,
			MonthlyPayment:     req.MonthlyPayment,
			YearsPaid:          req.YearsPaid,
		}
		if v := h.limits.ValidatePathB(in, lang); !v.Valid {
			writeJSONError(w, v.Message, http.StatusUnprocessableEntity)
			return
		}
		result, err = h.calc.PathB(r.Context(), in.OriginalLoanAmount, in.OriginalTenure, in.MonthlyPayment, in.YearsPaid)
	default:
		writeJSONError(w, "provide either loan_amount/tenure/interest_rate or original_loan_amount/original_tenure/monthly_payment/years_paid", http.StatusBadRequest)
		return
	}

	if errors.Is(err, refinance.ErrEstimationFailed) {
		writeJSONError(w, i18n.T(i18n.KeyCalcFailed, lang), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		h.logger.Error("calculation failed", "path", path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.persist(r, &req, path, result, lang)

	resp := CalculateResponse{
		Path:                path,
		Beneficial:          result.Beneficial,
		Reason:              string(result.Reason),
		MonthlySavings:      result.MonthlySavings,
		YearlySavings:       result.YearlySavings,
		LifetimeSavings:     result.LifetimeSavings,
		NewMonthlyRepayment: result.NewMonthlyRepayment,
		NewInterestRate:     result.NewInterestRate,
		LenderName:          result.LenderName,
		OutstandingBalance:  result.OutstandingBalance,
		CurrentInterestRate: result.CurrentInterestRate,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *CalculateHandler) persist(r *http.Request, req *CalculateRequest, path string, result *refinance.Savings, lang i18n.Language) {
	if h.profiles == nil || req.Phone == "" {
		return
	}
	rec := &profile.Record{
		ChatID:          req.Phone,
		Name:            req.Name,
		PhoneNumber:     req.Phone,
		Language:        string(lang),
		MonthlySavings:  result.MonthlySavings,
		YearlySavings:   result.YearlySavings,
		LifetimeSavings: result.LifetimeSavings,
		LenderName:      result.LenderName,
		LastInteraction: time.Now().UTC(),
	}
	rec.NewMonthlyRepayment = result.NewMonthlyRepayment
	if path == "A" {
		rec.LoanAmount = req.LoanAmount
		rec.Tenure = req.Tenure
		rec.InterestRate = req.InterestRate
	} else {
		rec.OriginalLoanAmount = req.OriginalLoanAmount
		rec.OriginalTenure = req.OriginalTenure
		rec.MonthlyPayment = req.MonthlyPayment
		rec.YearsPaid = req.YearsPaid
		rec.OutstandingBalance = result.OutstandingBalance
	}
	if err := h.profiles.Upsert(r.Context(), rec); err != nil {
		h.logger.Error("failed to persist calculation profile", "phone", req.Phone, "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
