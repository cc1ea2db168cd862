package employee

import "github.com/shopspring/decimal"

type EmployeeResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	FullName   string          `json:"full_name"`
	JobTitle   *string         `json:"job_title,omitempty"`
	Department *string         `json:"department,omitempty"`
	Email      *string         `json:"email,omitempty"`
	Phone      *string         `json:"phone,omitempty"`
	Active     bool            `json:"active"`
	Salary     decimal.Decimal `json:"salary"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

type ListEmployeesResponse struct {
	TotalCount int64              `json:"total_count"`
	Employees  []EmployeeResponse `json:"employees"`
}
