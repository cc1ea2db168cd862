package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusApproved  EntryStatus = "approved"
	EntryStatusPaid      EntryStatus = "paid"
	EntryStatusCancelled EntryStatus = "cancelled"
)

// Period is a (year, month) pair mapped to an inclusive calendar range.
type Period struct {
	Year  int
	Month int
}

// Start returns the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Valid reports whether the pair denotes a real month.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2000
}

// Entry is the generated payroll record, the system of record for one
// employee and one period. At most one non-cancelled entry may exist
// per (employee, year, month); the repository enforces this with a
// partial unique index.
type Entry struct {
	ID          string
	EmployeeID  string
	Month       int
	Year        int
	PeriodStart time.Time
	PeriodEnd   time.Time

	Basic decimal.Decimal

	// Itemized allowances; Allowances is their sum, or a directly
	// supplied total when no itemized field is set.
	HousingAllowance   decimal.Decimal
	TransportAllowance decimal.Decimal
	FoodAllowance      decimal.Decimal
	PhoneAllowance     decimal.Decimal
	OtherAllowances    decimal.Decimal
	Allowances         decimal.Decimal

	Bonus          decimal.Decimal
	Commission     decimal.Decimal
	OvertimeHours  decimal.Decimal
	OvertimeAmount decimal.Decimal
	Incentives     decimal.Decimal

	AbsenceDays          int
	AbsenceDeduction     decimal.Decimal
	LateMinutes          int
	LateDeduction        decimal.Decimal
	LoanDeduction        decimal.Decimal
	UnpaidLeaveDays      int
	UnpaidLeaveDeduction decimal.Decimal
	OtherDeductions      decimal.Decimal
	// Deductions is the pre-tax sum of the five components above.
	Deductions decimal.Decimal

	Tax             decimal.Decimal
	Insurance       decimal.Decimal
	HealthInsurance decimal.Decimal

	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	Net             decimal.Decimal

	Status      EntryStatus
	PaymentDate *time.Time
	Notes       *string

	GeneratedBy *string
	GeneratedAt time.Time
	ApprovedBy  *string
	ApprovedAt  *time.Time
	PaidBy      *string
	PaidAt      *time.Time

	LastRecalcNetDiff decimal.Decimal
	LastRecalcAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// Editable reports whether the entry may still be modified, deleted or
// recalculated.
func (e Entry) Editable() bool {
	return e.Status == EntryStatusPending || e.Status == EntryStatusApproved
}

// Template is an employee's fixed salary template used by batch
// generation: basic pay plus the recurring itemized allowances.
type Template struct {
	ID         string
	EmployeeID string

	BasicSalary        decimal.Decimal
	HousingAllowance   decimal.Decimal
	TransportAllowance decimal.Decimal
	FoodAllowance      decimal.Decimal
	PhoneAllowance     decimal.Decimal
	OtherAllowances    decimal.Decimal

	OvertimeRate decimal.Decimal
	HourlyRate   *decimal.Decimal

	IsActive      bool
	EffectiveFrom *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type BatchStatus string

const (
	BatchStatusDraft     BatchStatus = "draft"
	BatchStatusApproved  BatchStatus = "approved"
	BatchStatusPaid      BatchStatus = "paid"
	BatchStatusCancelled BatchStatus = "cancelled"
)

// Batch is the summary record of one monthly generation run.
type Batch struct {
	ID          string
	Month       int
	Year        int
	PeriodStart time.Time
	PeriodEnd   time.Time

	TotalEmployees  int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal

	Status      BatchStatus
	GeneratedBy *string
	GeneratedAt time.Time
	Notes       *string
}
