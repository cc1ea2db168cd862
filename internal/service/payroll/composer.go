package payroll

import (
	"context"
	"fmt"
	"time"

	attendanceService "github.com/nagnet2050/quick-sale-hr/internal/service/attendance"
	leaveService "github.com/nagnet2050/quick-sale-hr/internal/service/leave"
	loanService "github.com/nagnet2050/quick-sale-hr/internal/service/loan"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/employee"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// hoursPerMonth prices the hourly rate as 30 days of 8 hours.
var hoursPerMonth = decimal.NewFromInt(240)

// ComposeInputs carries the earnings that cannot be derived from
// attendance, leave or loan state. Zero values are valid inputs.
type ComposeInputs struct {
	// Basic overrides the employee's stored base salary when set.
	Basic *decimal.Decimal

	HousingAllowance   decimal.Decimal
	TransportAllowance decimal.Decimal
	FoodAllowance      decimal.Decimal
	PhoneAllowance     decimal.Decimal
	OtherAllowances    decimal.Decimal
	// AllowancesTotal is honored only when every itemized field above
	// is zero, for callers supplying a lump sum.
	AllowancesTotal decimal.Decimal

	Bonus      decimal.Decimal
	Commission decimal.Decimal
	Incentives decimal.Decimal

	OvertimeHours decimal.Decimal
	// OvertimeRate and HourlyRate override the configured multiplier
	// and the derived basic/240 figure, usually from a salary template.
	OvertimeRate *decimal.Decimal
	HourlyRate   *decimal.Decimal

	OtherDeductions decimal.Decimal
}

// Composer produces the full salary breakdown for one employee and one
// period. It is a pure computation over repository snapshots; nothing
// is persisted here.
type Composer struct {
	employeeRepo employee.EmployeeRepository
	aggregator   *attendanceService.Aggregator
	partitioner  *leaveService.Partitioner
	amortizer    *loanService.Amortizer
	taxCalc      *TaxCalculator
	cfg          payroll.Config
}

func NewComposer(
	employeeRepo employee.EmployeeRepository,
	aggregator *attendanceService.Aggregator,
	partitioner *leaveService.Partitioner,
	amortizer *loanService.Amortizer,
	taxCalc *TaxCalculator,
	cfg payroll.Config,
) *Composer {
	return &Composer{
		employeeRepo: employeeRepo,
		aggregator:   aggregator,
		partitioner:  partitioner,
		amortizer:    amortizer,
		taxCalc:      taxCalc,
		cfg:          cfg,
	}
}

// Compose runs the full pipeline: attendance reconciliation, leave
// partitioning, loan dues, tax and insurance, gross and net. Every
// intermediate figure lands on the returned entry so payslip views can
// reproduce the result without re-deriving it.
func (c *Composer) Compose(ctx context.Context, employeeID string, periodStart, periodEnd time.Time, in ComposeInputs) (payroll.Entry, error) {
	emp, err := c.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.Entry{}, err
	}

	basic := emp.Salary
	if in.Basic != nil {
		basic = *in.Basic
	}

	totals, err := c.aggregator.Aggregate(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return payroll.Entry{}, err
	}

	paidDates, unpaidDates, err := c.partitioner.Partition(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return payroll.Entry{}, err
	}

	// Leave days must not double-count as absence.
	adjustedAbsence := totals.AbsenceDays - paidDates.Len() - unpaidDates.Len()
	if adjustedAbsence < 0 {
		adjustedAbsence = 0
	}

	var dailyRate decimal.Decimal
	if totals.WorkingDays > 0 {
		dailyRate = basic.Div(decimal.NewFromInt(int64(totals.WorkingDays)))
	} else {
		dailyRate = basic.Div(decimal.NewFromInt(30))
	}

	absenceDeduction := dailyRate.
		Mul(decimal.NewFromInt(int64(adjustedAbsence))).
		Mul(c.cfg.AbsenceDeductionRate).
		Round(2)

	hourlyRate := basic.Div(hoursPerMonth)
	if in.HourlyRate != nil && in.HourlyRate.IsPositive() {
		hourlyRate = *in.HourlyRate
	}

	latePerHour := c.cfg.LateDeductionPerHour
	if !latePerHour.IsPositive() {
		latePerHour = hourlyRate
	}
	lateDeduction := latePerHour.
		Mul(decimal.NewFromInt(int64(totals.LateMinutes))).
		Div(decimal.NewFromInt(60)).
		Round(2)

	unpaidLeaveDeduction := dailyRate.
		Mul(decimal.NewFromInt(int64(unpaidDates.Len()))).
		Round(2)

	dues, err := c.amortizer.ComputeDue(ctx, employeeID, periodEnd)
	if err != nil {
		return payroll.Entry{}, err
	}
	loanDeduction := loanService.TotalDue(dues)

	allowances := in.HousingAllowance.
		Add(in.TransportAllowance).
		Add(in.FoodAllowance).
		Add(in.PhoneAllowance).
		Add(in.OtherAllowances)
	if allowances.IsZero() {
		allowances = in.AllowancesTotal
	}

	overtimeRate := c.cfg.OvertimeRate
	if in.OvertimeRate != nil && in.OvertimeRate.IsPositive() {
		overtimeRate = *in.OvertimeRate
	}
	overtimeAmount := in.OvertimeHours.Mul(hourlyRate).Mul(overtimeRate).Round(2)

	gross := basic.
		Add(allowances).
		Add(in.Bonus).
		Add(in.Commission).
		Add(overtimeAmount).
		Add(in.Incentives)

	preTax := absenceDeduction.
		Add(lateDeduction).
		Add(loanDeduction).
		Add(unpaidLeaveDeduction).
		Add(in.OtherDeductions)

	taxes := c.taxCalc.Apply(basic, allowances, gross.Sub(preTax))

	totalDeductions := preTax.
		Add(taxes.Tax).
		Add(taxes.Insurance).
		Add(taxes.HealthInsurance)

	net := gross.Sub(totalDeductions).Round(2)

	return payroll.Entry{
		EmployeeID:  employeeID,
		Month:       int(periodStart.Month()),
		Year:        periodStart.Year(),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,

		Basic:              basic,
		HousingAllowance:   in.HousingAllowance,
		TransportAllowance: in.TransportAllowance,
		FoodAllowance:      in.FoodAllowance,
		PhoneAllowance:     in.PhoneAllowance,
		OtherAllowances:    in.OtherAllowances,
		Allowances:         allowances,

		Bonus:          in.Bonus,
		Commission:     in.Commission,
		OvertimeHours:  in.OvertimeHours,
		OvertimeAmount: overtimeAmount,
		Incentives:     in.Incentives,

		AbsenceDays:          adjustedAbsence,
		AbsenceDeduction:     absenceDeduction,
		LateMinutes:          totals.LateMinutes,
		LateDeduction:        lateDeduction,
		LoanDeduction:        loanDeduction,
		UnpaidLeaveDays:      unpaidDates.Len(),
		UnpaidLeaveDeduction: unpaidLeaveDeduction,
		OtherDeductions:      in.OtherDeductions,
		Deductions:           preTax,

		Tax:             taxes.Tax,
		Insurance:       taxes.Insurance,
		HealthInsurance: taxes.HealthInsurance,

		GrossSalary:     gross,
		TotalDeductions: totalDeductions,
		Net:             net,
	}, nil
}

// InputsFromTemplate seeds compose inputs from an employee's salary
// template.
func InputsFromTemplate(t payroll.Template) ComposeInputs {
	in := ComposeInputs{
		HousingAllowance:   t.HousingAllowance,
		TransportAllowance: t.TransportAllowance,
		FoodAllowance:      t.FoodAllowance,
		PhoneAllowance:     t.PhoneAllowance,
		OtherAllowances:    t.OtherAllowances,
	}
	if t.BasicSalary.IsPositive() {
		basic := t.BasicSalary
		in.Basic = &basic
	}
	if t.OvertimeRate.IsPositive() {
		rate := t.OvertimeRate
		in.OvertimeRate = &rate
	}
	if t.HourlyRate != nil && t.HourlyRate.IsPositive() {
		hourly := *t.HourlyRate
		in.HourlyRate = &hourly
	}
	return in
}

// InputsFromEntry rebuilds compose inputs from a stored entry so a
// recalculation keeps the manual components while re-deriving the rest
// from current attendance, leave and loan state.
func InputsFromEntry(e payroll.Entry) ComposeInputs {
	basic := e.Basic
	return ComposeInputs{
		Basic:              &basic,
		HousingAllowance:   e.HousingAllowance,
		TransportAllowance: e.TransportAllowance,
		FoodAllowance:      e.FoodAllowance,
		PhoneAllowance:     e.PhoneAllowance,
		OtherAllowances:    e.OtherAllowances,
		AllowancesTotal:    e.Allowances,
		Bonus:              e.Bonus,
		Commission:         e.Commission,
		Incentives:         e.Incentives,
		OvertimeHours:      e.OvertimeHours,
		OtherDeductions:    e.OtherDeductions,
	}
}

// periodLabel renders "2025-03" style labels for logs and errors.
func periodLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
