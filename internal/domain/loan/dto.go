package loan

import (
	"strings"

	"github.com/nagnet2050/quick-sale-hr/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var LoanTypeValues = []string{
	string(LoanTypeLoan),
	string(LoanTypeAdvance),
}

type CreateLoanRequest struct {
	EmployeeID string `json:"-"`

	Type             string           `json:"type"`
	Amount           decimal.Decimal  `json:"amount"`
	MonthlyDeduction *decimal.Decimal `json:"monthly_deduction,omitempty"`
	Installments     *int             `json:"installments,omitempty"`
	IssuedDate       string           `json:"issued_date"`
	Reason           *string          `json:"reason,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}

func (r *CreateLoanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is required",
		})
	} else if !validator.IsInSlice(r.Type, LoanTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: " + strings.Join(LoanTypeValues, ", "),
		})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must be greater than 0",
		})
	}
	if r.MonthlyDeduction != nil && r.MonthlyDeduction.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "monthly_deduction",
			Message: "monthly_deduction must not be negative",
		})
	}
	if r.Installments != nil && *r.Installments <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "installments",
			Message: "installments must be greater than 0",
		})
	}
	if r.MonthlyDeduction == nil && r.Installments == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "monthly_deduction",
			Message: "either monthly_deduction or installments is required",
		})
	}
	if validator.IsEmpty(r.IssuedDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "issued_date",
			Message: "issued_date is required",
		})
	} else if _, valid := validator.IsValidDate(r.IssuedDate); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "issued_date",
			Message: "issued_date must be a valid date in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LoanResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	MonthlyDeduction decimal.Decimal `json:"monthly_deduction"`
	Installments     *int            `json:"installments,omitempty"`
	PaidInstallments int             `json:"paid_installments"`
	IssuedDate       string          `json:"issued_date"`
	CompletedDate    *string         `json:"completed_date,omitempty"`
	Status           string          `json:"status"`
	Reason           *string         `json:"reason,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

// DueResponse is one line of the current-period deduction breakdown.
type DueResponse struct {
	LoanID    string          `json:"loan_id"`
	Type      string          `json:"type"`
	Reason    *string         `json:"reason,omitempty"`
	Monthly   decimal.Decimal `json:"monthly"`
	Remaining decimal.Decimal `json:"remaining"`
	Due       decimal.Decimal `json:"due"`
}

type EmployeeLoansResponse struct {
	EmployeeID string          `json:"employee_id"`
	Loans      []LoanResponse  `json:"loans"`
	Dues       []DueResponse   `json:"dues"`
	TotalDue   decimal.Decimal `json:"total_due"`
}
