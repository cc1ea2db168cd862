package employee

import "context"

type EmployeeService interface {
	ListActive(ctx context.Context) (ListEmployeesResponse, error)
	Get(ctx context.Context, id string) (EmployeeResponse, error)
}
