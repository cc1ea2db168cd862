package payroll

import (
	"strings"

	"github.com/nagnet2050/quick-sale-hr/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var EntryStatusValues = []string{
	string(EntryStatusPending),
	string(EntryStatusApproved),
	string(EntryStatusPaid),
	string(EntryStatusCancelled),
}

// CreateEntryRequest generates a single payroll entry. Earnings not
// derivable from the employee's template or attendance are supplied
// here; omitted fields default to zero.
type CreateEntryRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`

	Bonus           decimal.Decimal `json:"bonus"`
	Commission      decimal.Decimal `json:"commission"`
	Incentives      decimal.Decimal `json:"incentives"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`

	Notes       *string `json:"notes,omitempty"`
	GeneratedBy *string `json:"-"`
}

func (r *CreateEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if r.Year < 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be 2000 or later",
		})
	}
	if r.Bonus.IsNegative() || r.Commission.IsNegative() || r.Incentives.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "earnings",
			Message: "bonus, commission and incentives must not be negative",
		})
	}
	if r.OvertimeHours.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_hours",
			Message: "overtime_hours must not be negative",
		})
	}
	if r.OtherDeductions.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "other_deductions",
			Message: "other_deductions must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateEntryRequest edits the manual components of a pending or
// approved entry. Derived figures are recomputed by the service, so
// only inputs are accepted here.
type UpdateEntryRequest struct {
	ID string `json:"-"`

	Bonus           *decimal.Decimal `json:"bonus,omitempty"`
	Commission      *decimal.Decimal `json:"commission,omitempty"`
	Incentives      *decimal.Decimal `json:"incentives,omitempty"`
	OvertimeHours   *decimal.Decimal `json:"overtime_hours,omitempty"`
	OtherDeductions *decimal.Decimal `json:"other_deductions,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

func (r *UpdateEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	for field, v := range map[string]*decimal.Decimal{
		"bonus":            r.Bonus,
		"commission":       r.Commission,
		"incentives":       r.Incentives,
		"overtime_hours":   r.OvertimeHours,
		"other_deductions": r.OtherDeductions,
	} {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must not be negative",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// GenerateBatchRequest runs payroll for every active employee in one
// period.
type GenerateBatchRequest struct {
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	Notes       *string `json:"notes,omitempty"`
	GeneratedBy *string `json:"-"`
}

func (r *GenerateBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if r.Year < 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be 2000 or later",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RecalculateBatchRequest re-derives every editable entry of a period.
type RecalculateBatchRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *RecalculateBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if r.Year < 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be 2000 or later",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EntryFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
	Status     *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

func (f *EntryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, EntryStatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(EntryStatusValues, ", "),
		})
	}

	if f.SortBy != "" {
		validSortFields := []string{"period", "net_salary", "status", "created_at"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: period, net_salary, status, created_at",
			})
		}
	} else {
		f.SortBy = "period"
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EntryResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`

	Basic              decimal.Decimal `json:"basic_salary"`
	HousingAllowance   decimal.Decimal `json:"housing_allowance"`
	TransportAllowance decimal.Decimal `json:"transport_allowance"`
	FoodAllowance      decimal.Decimal `json:"food_allowance"`
	PhoneAllowance     decimal.Decimal `json:"phone_allowance"`
	OtherAllowances    decimal.Decimal `json:"other_allowances"`
	Allowances         decimal.Decimal `json:"allowances"`

	Bonus          decimal.Decimal `json:"bonus"`
	Commission     decimal.Decimal `json:"commission"`
	OvertimeHours  decimal.Decimal `json:"overtime_hours"`
	OvertimeAmount decimal.Decimal `json:"overtime_amount"`
	Incentives     decimal.Decimal `json:"incentives"`

	AbsenceDays          int             `json:"absence_days"`
	AbsenceDeduction     decimal.Decimal `json:"absence_deduction"`
	LateMinutes          int             `json:"late_minutes"`
	LateDeduction        decimal.Decimal `json:"late_deduction"`
	LoanDeduction        decimal.Decimal `json:"loan_deduction"`
	UnpaidLeaveDays      int             `json:"unpaid_leave_days"`
	UnpaidLeaveDeduction decimal.Decimal `json:"unpaid_leave_deduction"`
	OtherDeductions      decimal.Decimal `json:"other_deductions"`
	Deductions           decimal.Decimal `json:"deductions"`

	Tax             decimal.Decimal `json:"tax"`
	Insurance       decimal.Decimal `json:"insurance"`
	HealthInsurance decimal.Decimal `json:"health_insurance"`

	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	Net             decimal.Decimal `json:"net_salary"`

	Status      string  `json:"status"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Notes       *string `json:"notes,omitempty"`

	LastRecalcNetDiff decimal.Decimal `json:"last_recalc_net_diff"`
	LastRecalcAt      *string         `json:"last_recalc_at,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ListEntriesResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Entries    []EntryResponse `json:"entries"`
}

type BatchResponse struct {
	ID              string          `json:"id"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	TotalEmployees  int             `json:"total_employees"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	Status          string          `json:"status"`
	GeneratedAt     string          `json:"generated_at"`
	Notes           *string         `json:"notes,omitempty"`
}

// RecalcBatchResponse reports the outcome of a whole-period
// recalculation: how many entries changed and by how much in total.
type RecalcBatchResponse struct {
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	Recalculated int             `json:"recalculated"`
	Changed      int             `json:"changed"`
	TotalNetDiff decimal.Decimal `json:"total_net_diff"`
	Skipped      int             `json:"skipped"`
}

type SummaryResponse struct {
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	TotalEmployees  int             `json:"total_employees"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	ByStatus        map[string]int  `json:"by_status"`
}

// UpsertTemplateRequest creates or replaces an employee's salary
// template.
type UpsertTemplateRequest struct {
	EmployeeID string `json:"-"`

	BasicSalary        decimal.Decimal  `json:"basic_salary"`
	HousingAllowance   decimal.Decimal  `json:"housing_allowance"`
	TransportAllowance decimal.Decimal  `json:"transport_allowance"`
	FoodAllowance      decimal.Decimal  `json:"food_allowance"`
	PhoneAllowance     decimal.Decimal  `json:"phone_allowance"`
	OtherAllowances    decimal.Decimal  `json:"other_allowances"`
	OvertimeRate       *decimal.Decimal `json:"overtime_rate,omitempty"`
	HourlyRate         *decimal.Decimal `json:"hourly_rate,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
	EffectiveFrom      *string          `json:"effective_from,omitempty"`
}

func (r *UpsertTemplateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if !r.BasicSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "basic_salary",
			Message: "basic_salary must be greater than 0",
		})
	}
	for field, v := range map[string]decimal.Decimal{
		"housing_allowance":   r.HousingAllowance,
		"transport_allowance": r.TransportAllowance,
		"food_allowance":      r.FoodAllowance,
		"phone_allowance":     r.PhoneAllowance,
		"other_allowances":    r.OtherAllowances,
	} {
		if v.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must not be negative",
			})
		}
	}
	if r.OvertimeRate != nil && r.OvertimeRate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_rate",
			Message: "overtime_rate must not be negative",
		})
	}
	if r.HourlyRate != nil && r.HourlyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "hourly_rate",
			Message: "hourly_rate must not be negative",
		})
	}
	if r.EffectiveFrom != nil {
		if _, valid := validator.IsValidDate(*r.EffectiveFrom); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "effective_from",
				Message: "effective_from must be a valid date in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TemplateResponse struct {
	ID                 string           `json:"id"`
	EmployeeID         string           `json:"employee_id"`
	BasicSalary        decimal.Decimal  `json:"basic_salary"`
	HousingAllowance   decimal.Decimal  `json:"housing_allowance"`
	TransportAllowance decimal.Decimal  `json:"transport_allowance"`
	FoodAllowance      decimal.Decimal  `json:"food_allowance"`
	PhoneAllowance     decimal.Decimal  `json:"phone_allowance"`
	OtherAllowances    decimal.Decimal  `json:"other_allowances"`
	OvertimeRate       decimal.Decimal  `json:"overtime_rate"`
	HourlyRate         *decimal.Decimal `json:"hourly_rate,omitempty"`
	IsActive           bool             `json:"is_active"`
	EffectiveFrom      *string          `json:"effective_from,omitempty"`
	CreatedAt          string           `json:"created_at"`
	UpdatedAt          string           `json:"updated_at"`
}
