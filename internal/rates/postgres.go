package rates

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/quantifyai/refibot/internal/finance"
	"github.com/quantifyai/refibot/pkg/logging"
)

// rateQuerier is the subset of pgxpool.Pool the store needs.
type rateQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource reads lender offers from the bank_rates table, picking the
// lowest rate whose amount band covers the loan. Any failure, including an
// empty table, degrades to the fallback source.
type PostgresSource struct {
	db       rateQuerier
	fallback Source
	logger   *logging.Logger
}

// NewPostgresSource creates a rate source backed by the bank_rates table.
func NewPostgresSource(db rateQuerier, fallback Source, logger *logging.Logger) *PostgresSource {
	if db == nil {
		panic("rates: db required")
	}
	if fallback == nil {
		panic("rates: fallback source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresSource{db: db, fallback: fallback, logger: logger}
}

// BestRate returns the lowest matching offer, or the fallback quote.
func (s *PostgresSource) BestRate(ctx context.Context, loanAmount float64) Quote {
	if loanAmount <= 0 {
		s.logger.Warn("rates: invalid loan amount for lookup", "loan_amount", loanAmount)
		return s.fallback.BestRate(ctx, loanAmount)
	}

	query := `
		SELECT bankname, interestrate
		FROM bank_rates
		WHERE minamount <= $1 AND maxamount >= $1
		ORDER BY interestrate ASC
		LIMIT 1
	`
	var quote Quote
	err := s.db.QueryRow(ctx, query, loanAmount).Scan(&quote.LenderName, &quote.Rate)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.logger.Warn("rates: no matching bank rate", "loan_amount", loanAmount)
		} else {
			s.logger.Error("rates: lookup failed", "error", err, "loan_amount", loanAmount)
		}
		return s.fallback.BestRate(ctx, loanAmount)
	}

	quote.Rate = finance.Round2(quote.Rate)
	s.logger.Info("rates: selected bank rate",
		"loan_amount", loanAmount,
		"rate", quote.Rate,
		"lender", quote.LenderName,
	)
	return quote
}
