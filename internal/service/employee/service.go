package employee

import (
	"context"
	"time"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/employee"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

func (s *EmployeeServiceImpl) ListActive(ctx context.Context) (employee.ListEmployeesResponse, error) {
	employees, err := s.employeeRepo.GetActive(ctx)
	if err != nil {
		return employee.ListEmployeesResponse{}, err
	}

	resp := employee.ListEmployeesResponse{
		TotalCount: int64(len(employees)),
		Employees:  make([]employee.EmployeeResponse, 0, len(employees)),
	}
	for _, e := range employees {
		resp.Employees = append(resp.Employees, toEmployeeResponse(e))
	}
	return resp, nil
}

func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return toEmployeeResponse(e), nil
}

func toEmployeeResponse(e employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:         e.ID,
		Code:       e.Code,
		FullName:   e.FullName,
		JobTitle:   e.JobTitle,
		Department: e.Department,
		Email:      e.Email,
		Phone:      e.Phone,
		Active:     e.Active,
		Salary:     e.Salary,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  e.UpdatedAt.Format(time.RFC3339),
	}
}
