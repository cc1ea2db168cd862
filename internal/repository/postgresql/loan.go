package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/loan"
	"github.com/nagnet2050/quick-sale-hr/internal/pkg/database"
)

type loanRepository struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, employee_id, type, amount, remaining_amount, monthly_deduction,
	installments, paid_installments, issued_date, start_date, end_date,
	completed_date, status, reason, notes, created_at`

func (r *loanRepository) Create(ctx context.Context, l loan.Loan) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	if l.ID == "" {
		l.ID = uuid.New().String()
	}

	query := `
		INSERT INTO loans (
			id, employee_id, type, amount, remaining_amount, monthly_deduction,
			installments, paid_installments, issued_date, start_date, end_date,
			status, reason, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + loanColumns

	var created loan.Loan
	err := q.QueryRow(ctx, query,
		l.ID, l.EmployeeID, l.Type, l.Amount, l.RemainingAmount, l.MonthlyDeduction,
		l.Installments, l.PaidInstallments, l.IssuedDate, l.StartDate, l.EndDate,
		l.Status, l.Reason, l.Notes,
	).Scan(scanLoanTargets(&created)...)
	if err != nil {
		return loan.Loan{}, fmt.Errorf("failed to create loan: %w", err)
	}

	return created, nil
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var l loan.Loan
	err := q.QueryRow(ctx, query, id).Scan(scanLoanTargets(&l)...)
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.Loan{}, loan.ErrLoanNotFound
		}
		return loan.Loan{}, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

func (r *loanRepository) GetActiveByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	// Issue-date order: payment application walks oldest loans first.
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE employee_id = $1 AND status = 'active'
		ORDER BY issued_date, id
	`

	return r.queryLoans(ctx, q, query, employeeID)
}

func (r *loanRepository) ListByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE employee_id = $1
		ORDER BY issued_date DESC, id
	`

	return r.queryLoans(ctx, q, query, employeeID)
}

func (r *loanRepository) UpdateAmortization(ctx context.Context, id string, remaining decimal.Decimal, paidInstallments int, status loan.LoanStatus, completedDate *time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET remaining_amount = $2, paid_installments = $3, status = $4, completed_date = $5
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, remaining, paidInstallments, status, completedDate)
	if err != nil {
		return fmt.Errorf("failed to update loan amortization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrLoanNotFound
	}

	return nil
}

func (r *loanRepository) queryLoans(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]loan.Loan, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		var l loan.Loan
		if err := rows.Scan(scanLoanTargets(&l)...); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}

	return loans, rows.Err()
}

func scanLoanTargets(l *loan.Loan) []interface{} {
	return []interface{}{
		&l.ID, &l.EmployeeID, &l.Type, &l.Amount, &l.RemainingAmount, &l.MonthlyDeduction,
		&l.Installments, &l.PaidInstallments, &l.IssuedDate, &l.StartDate, &l.EndDate,
		&l.CompletedDate, &l.Status, &l.Reason, &l.Notes, &l.CreatedAt,
	}
}
