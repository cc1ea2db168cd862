package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/loan"
	"github.com/shopspring/decimal"
)

// Amortizer computes per-period loan deductions and applies confirmed
// payments against loan balances. ComputeDue never mutates; only
// ApplyPayment does, and only when a payroll entry is marked paid.
type Amortizer struct {
	loanRepo   loan.LoanRepository
	autoDeduct bool
}

func NewAmortizer(loanRepo loan.LoanRepository, autoDeduct bool) *Amortizer {
	return &Amortizer{
		loanRepo:   loanRepo,
		autoDeduct: autoDeduct,
	}
}

// ComputeDue returns the amount owed this period per active loan:
// min(monthly installment, remaining balance). Loans starting after
// periodEnd, loans with nothing remaining, and loans where no monthly
// figure can be resolved are skipped. Returns nothing when automatic
// deduction is disabled.
func (a *Amortizer) ComputeDue(ctx context.Context, employeeID string, periodEnd time.Time) ([]loan.Due, error) {
	if !a.autoDeduct {
		return nil, nil
	}

	loans, err := a.loanRepo.GetActiveByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("get active loans: %w", err)
	}

	var dues []loan.Due
	for _, l := range loans {
		if l.StartDate != nil && l.StartDate.After(periodEnd) {
			continue
		}
		remaining := l.EffectiveRemaining()
		if !remaining.IsPositive() {
			continue
		}
		monthly := l.EffectiveMonthly()
		if !monthly.IsPositive() {
			continue
		}

		due := monthly
		if remaining.LessThan(monthly) {
			due = remaining
		}
		dues = append(dues, loan.Due{
			LoanID:    l.ID,
			Type:      l.Type,
			Reason:    l.Reason,
			Monthly:   monthly,
			Remaining: remaining,
			Due:       due,
		})
	}

	return dues, nil
}

// TotalDue sums the due amounts of a breakdown.
func TotalDue(dues []loan.Due) decimal.Decimal {
	total := decimal.Zero
	for _, d := range dues {
		total = total.Add(d.Due)
	}
	return total
}

// ApplyPayment distributes a confirmed deduction across the employee's
// active loans in ascending issue-date order. The amount is the figure
// already charged on the payroll entry, not recomputed here. Each loan
// absorbs up to its own due amount; balances are clamped at zero and a
// drained loan transitions to completed.
func (a *Amortizer) ApplyPayment(ctx context.Context, employeeID string, amount decimal.Decimal, periodEnd time.Time) error {
	if !amount.IsPositive() {
		return nil
	}

	loans, err := a.loanRepo.GetActiveByEmployee(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("get active loans: %w", err)
	}

	left := amount
	for _, l := range loans {
		if !left.IsPositive() {
			break
		}
		if l.StartDate != nil && l.StartDate.After(periodEnd) {
			continue
		}
		remaining := l.EffectiveRemaining()
		if !remaining.IsPositive() {
			continue
		}
		monthly := l.EffectiveMonthly()
		if !monthly.IsPositive() {
			continue
		}

		portion := monthly
		if remaining.LessThan(portion) {
			portion = remaining
		}
		if left.LessThan(portion) {
			portion = left
		}

		newRemaining := remaining.Sub(portion)
		if newRemaining.IsNegative() {
			newRemaining = decimal.Zero
		}

		status := l.Status
		var completedDate *time.Time
		if newRemaining.IsZero() {
			status = loan.LoanStatusCompleted
			now := time.Now().UTC()
			completedDate = &now
		}

		if err := a.loanRepo.UpdateAmortization(ctx, l.ID, newRemaining, l.PaidInstallments+1, status, completedDate); err != nil {
			return fmt.Errorf("update loan %s: %w", l.ID, err)
		}

		left = left.Sub(portion)
	}

	return nil
}
