package loan

import "context"

type LoanService interface {
	Create(ctx context.Context, req CreateLoanRequest) (LoanResponse, error)
	// GetEmployeeLoans returns the employee's loans plus the deduction
	// breakdown the next payroll run would charge.
	GetEmployeeLoans(ctx context.Context, employeeID string) (EmployeeLoansResponse, error)
}
