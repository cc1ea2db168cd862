package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/employee"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/loan"
	"github.com/shopspring/decimal"
)

type LoanServiceImpl struct {
	loanRepo     loan.LoanRepository
	employeeRepo employee.EmployeeRepository
	amortizer    *Amortizer
}

func NewLoanService(
	loanRepo loan.LoanRepository,
	employeeRepo employee.EmployeeRepository,
	amortizer *Amortizer,
) loan.LoanService {
	return &LoanServiceImpl{
		loanRepo:     loanRepo,
		employeeRepo: employeeRepo,
		amortizer:    amortizer,
	}
}

func (s *LoanServiceImpl) Create(ctx context.Context, req loan.CreateLoanRequest) (loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return loan.LoanResponse{}, err
	}

	issued, err := time.Parse("2006-01-02", req.IssuedDate)
	if err != nil {
		return loan.LoanResponse{}, fmt.Errorf("parse issued_date: %w", err)
	}

	remaining := req.Amount
	l := loan.Loan{
		EmployeeID:       req.EmployeeID,
		Type:             loan.LoanType(req.Type),
		Amount:           req.Amount,
		RemainingAmount:  &remaining,
		MonthlyDeduction: req.MonthlyDeduction,
		Installments:     req.Installments,
		IssuedDate:       issued,
		Status:           loan.LoanStatusActive,
		Reason:           req.Reason,
		Notes:            req.Notes,
	}

	created, err := s.loanRepo.Create(ctx, l)
	if err != nil {
		return loan.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	return toLoanResponse(created), nil
}

func (s *LoanServiceImpl) GetEmployeeLoans(ctx context.Context, employeeID string) (loan.EmployeeLoansResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return loan.EmployeeLoansResponse{}, err
	}

	loans, err := s.loanRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return loan.EmployeeLoansResponse{}, fmt.Errorf("list loans: %w", err)
	}

	// Dues are priced as of today so the caller sees what the next
	// payroll run would charge.
	dues, err := s.amortizer.ComputeDue(ctx, employeeID, time.Now().UTC())
	if err != nil {
		return loan.EmployeeLoansResponse{}, err
	}

	resp := loan.EmployeeLoansResponse{
		EmployeeID: employeeID,
		Loans:      make([]loan.LoanResponse, 0, len(loans)),
		Dues:       make([]loan.DueResponse, 0, len(dues)),
		TotalDue:   decimal.Zero,
	}
	for _, l := range loans {
		resp.Loans = append(resp.Loans, toLoanResponse(l))
	}
	for _, d := range dues {
		resp.Dues = append(resp.Dues, loan.DueResponse{
			LoanID:    d.LoanID,
			Type:      string(d.Type),
			Reason:    d.Reason,
			Monthly:   d.Monthly,
			Remaining: d.Remaining,
			Due:       d.Due,
		})
		resp.TotalDue = resp.TotalDue.Add(d.Due)
	}

	return resp, nil
}

func toLoanResponse(l loan.Loan) loan.LoanResponse {
	resp := loan.LoanResponse{
		ID:               l.ID,
		EmployeeID:       l.EmployeeID,
		Type:             string(l.Type),
		Amount:           l.Amount,
		RemainingAmount:  l.EffectiveRemaining(),
		MonthlyDeduction: l.EffectiveMonthly(),
		Installments:     l.Installments,
		PaidInstallments: l.PaidInstallments,
		IssuedDate:       l.IssuedDate.Format("2006-01-02"),
		Status:           string(l.Status),
		Reason:           l.Reason,
		Notes:            l.Notes,
		CreatedAt:        l.CreatedAt.Format(time.RFC3339),
	}
	if l.CompletedDate != nil {
		s := l.CompletedDate.Format("2006-01-02")
		resp.CompletedDate = &s
	}
	return resp
}
