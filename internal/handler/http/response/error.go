package response

import (
	"errors"
	"net/http"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/employee"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/loan"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/payroll"
	"github.com/nagnet2050/quick-sale-hr/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrEntryNotFound):
		NotFound(w, "Payroll entry not found")
	case errors.Is(err, payroll.ErrEntryExists):
		Conflict(w, "Payroll entry already exists for this period")
	case errors.Is(err, payroll.ErrDuplicateBatch):
		Conflict(w, "Payroll batch already exists for this period")
	case errors.Is(err, payroll.ErrInvalidState):
		Conflict(w, "Payroll entry status forbids this operation")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, payroll.ErrNoTemplates):
		BadRequest(w, "No active employees with salary templates", nil)
	case errors.Is(err, payroll.ErrTemplateNotFound):
		NotFound(w, "Payroll template not found")
	case errors.Is(err, payroll.ErrBatchNotFound):
		NotFound(w, "Payroll batch not found")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Loan domain errors
	case errors.Is(err, loan.ErrLoanNotFound):
		NotFound(w, "Loan not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
