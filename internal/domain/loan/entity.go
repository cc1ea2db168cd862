package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanType string

const (
	LoanTypeLoan    LoanType = "loan"
	LoanTypeAdvance LoanType = "advance"
)

type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
	LoanStatusCancelled LoanStatus = "cancelled"
)

// Loan is an employee loan or salary advance repaid through monthly
// payroll deductions. RemainingAmount defaults to Amount when unset;
// MonthlyDeduction is derived from Amount/Installments when unset.
type Loan struct {
	ID               string
	EmployeeID       string
	Type             LoanType
	Amount           decimal.Decimal
	RemainingAmount  *decimal.Decimal
	MonthlyDeduction *decimal.Decimal
	Installments     *int
	PaidInstallments int
	IssuedDate       time.Time
	StartDate        *time.Time
	EndDate          *time.Time
	CompletedDate    *time.Time
	Status           LoanStatus
	Reason           *string
	Notes            *string
	CreatedAt        time.Time
}

// EffectiveRemaining resolves the remaining balance, defaulting to the
// full amount when the balance column was never initialized.
func (l Loan) EffectiveRemaining() decimal.Decimal {
	if l.RemainingAmount != nil {
		return *l.RemainingAmount
	}
	return l.Amount
}

// EffectiveMonthly resolves the monthly installment. When the column is
// unset or zero it is derived as round(amount/installments, 2); loans
// where neither figure is available yield zero and are skipped by the
// amortizer rather than treated as errors.
func (l Loan) EffectiveMonthly() decimal.Decimal {
	if l.MonthlyDeduction != nil && l.MonthlyDeduction.IsPositive() {
		return *l.MonthlyDeduction
	}
	if l.Installments != nil && *l.Installments > 0 && l.Amount.IsPositive() {
		return l.Amount.Div(decimal.NewFromInt(int64(*l.Installments))).Round(2)
	}
	return decimal.Zero
}

// Due is the per-loan amount owed this period, computed without
// mutating the loan record.
type Due struct {
	LoanID    string
	Type      LoanType
	Reason    *string
	Monthly   decimal.Decimal
	Remaining decimal.Decimal
	Due       decimal.Decimal
}
