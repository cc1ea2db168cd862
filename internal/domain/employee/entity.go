package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is owned by the HR module; the payroll core reads it only.
type Employee struct {
	ID         string
	Code       string
	FullName   string
	JobTitle   *string
	Department *string
	Email      *string
	Phone      *string
	Active     bool
	Salary     decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
