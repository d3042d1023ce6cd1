package profile

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the subset of pgxpool.Pool the repository needs.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository mirrors profiles into the users table.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository creates a repository backed by pgxpool.
func NewPostgresRepository(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("profile: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Upsert writes the full record, inserting or replacing by chat identity.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ChatID == "" {
		return fmt.Errorf("profile: chat id required")
	}
	query := `
		INSERT INTO users (
			chat_id, name, phone_number, referral_code, language,
			loan_amount, tenure, interest_rate,
			original_loan_amount, original_tenure, monthly_payment, years_paid,
			monthly_savings, yearly_savings, lifetime_savings,
			new_monthly_repayment, lender_name, outstanding_balance,
			last_interaction
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		)
		ON CONFLICT (chat_id) DO UPDATE SET
			name = EXCLUDED.name,
			phone_number = EXCLUDED.phone_number,
			referral_code = EXCLUDED.referral_code,
			language = EXCLUDED.language,
			loan_amount = EXCLUDED.loan_amount,
			tenure = EXCLUDED.tenure,
			interest_rate = EXCLUDED.interest_rate,
			original_loan_amount = EXCLUDED.original_loan_amount,
			original_tenure = EXCLUDED.original_tenure,
			monthly_payment = EXCLUDED.monthly_payment,
			years_paid = EXCLUDED.years_paid,
			monthly_savings = EXCLUDED.monthly_savings,
			yearly_savings = EXCLUDED.yearly_savings,
			lifetime_savings = EXCLUDED.lifetime_savings,
			new_monthly_repayment = EXCLUDED.new_monthly_repayment,
			lender_name = EXCLUDED.lender_name,
			outstanding_balance = EXCLUDED.outstanding_balance,
			last_interaction = EXCLUDED.last_interaction
	`
	_, err := r.db.Exec(ctx, query,
		rec.ChatID, rec.Name, rec.PhoneNumber, rec.ReferralCode, rec.Language,
		rec.LoanAmount, rec.Tenure, rec.InterestRate,
		rec.OriginalLoanAmount, rec.OriginalTenure, rec.MonthlyPayment, rec.YearsPaid,
		rec.MonthlySavings, rec.YearlySavings, rec.LifetimeSavings,
		rec.NewMonthlyRepayment, rec.LenderName, rec.OutstandingBalance,
		rec.LastInteraction,
	)
	if err != nil {
		return fmt.Errorf("profile: upsert failed: %w", err)
	}
	return nil
}

// Get fetches the record for a chat identity.
func (r *PostgresRepository) Get(ctx context.Context, chatID string) (*Record, error) {
	query := selectColumns + ` FROM users WHERE chat_id = $1`
	rec, err := scanRecord(r.db.QueryRow(ctx, query, chatID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profile: select failed: %w", err)
	}
	return rec, nil
}

// List returns up to limit records ordered by most recent interaction.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	query := selectColumns + ` FROM users ORDER BY last_interaction DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("profile: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("profile: scan failed: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile: list failed: %w", err)
	}
	return out, nil
}

const selectColumns = `
	SELECT chat_id, name, phone_number, referral_code, language,
		loan_amount, tenure, interest_rate,
		original_loan_amount, original_tenure, monthly_payment, years_paid,
		monthly_savings, yearly_savings, lifetime_savings,
		new_monthly_repayment, lender_name, outstanding_balance,
		last_interaction`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ChatID, &rec.Name, &rec.PhoneNumber, &rec.ReferralCode, &rec.Language,
		&rec.LoanAmount, &rec.Tenure, &rec.InterestRate,
		&rec.OriginalLoanAmount, &rec.OriginalTenure, &rec.MonthlyPayment, &rec.YearsPaid,
		&rec.MonthlySavings, &rec.YearlySavings, &rec.LifetimeSavings,
		&rec.NewMonthlyRepayment, &rec.LenderName, &rec.OutstandingBalance,
		&rec.LastInteraction,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
