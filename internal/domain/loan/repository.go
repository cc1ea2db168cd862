package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type LoanRepository interface {
	Create(ctx context.Context, l Loan) (Loan, error)
	GetByID(ctx context.Context, id string) (Loan, error)
	// GetActiveByEmployee returns the employee's active loans ordered by
	// issue date ascending; payment application depends on this order.
	GetActiveByEmployee(ctx context.Context, employeeID string) ([]Loan, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Loan, error)
	// UpdateAmortization persists the balance mutation performed by a
	// payment application.
	UpdateAmortization(ctx context.Context, id string, remaining decimal.Decimal, paidInstallments int, status LoanStatus, completedDate *time.Time) error
}
