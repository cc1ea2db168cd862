package payroll

import (
	"github.com/nagnet2050/quick-sale-hr/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

// Config carries every payroll rule knob. It is built once from the
// environment and passed explicitly into each component constructor;
// nothing in the engine reads ambient configuration.
type Config struct {
	// Flat rates applied by the tax/insurance pipeline.
	TaxRate             decimal.Decimal
	InsuranceRate       decimal.Decimal
	HealthInsuranceRate decimal.Decimal
	// Taxable income at or below this limit pays no tax (strict >).
	TaxExemptLimit decimal.Decimal

	// Multiplier applied to the daily rate per adjusted absence day.
	AbsenceDeductionRate decimal.Decimal
	// Per-hour price of lateness; zero means fall back to basic/240.
	LateDeductionPerHour decimal.Decimal
	// Multiplier for overtime hours when no template overrides it.
	OvertimeRate decimal.Decimal

	// When false, ComputeDue returns nothing and no loan installment is
	// charged or applied.
	AutoLoanDeduction bool

	// Work calendar inputs, same encoding as schedule.NewWorkCalendar.
	WorkDays  string
	WorkStart string
}

// DefaultConfig returns the documented fallbacks: tax 10%, insurance 2%,
// health insurance 0%, exempt limit 0, full daily rate per absence day,
// overtime at 1.5x, automatic loan deduction on, Sun-Thu week at 08:00.
func DefaultConfig() Config {
	return Config{
		TaxRate:              decimal.NewFromFloat(0.10),
		InsuranceRate:        decimal.NewFromFloat(0.02),
		HealthInsuranceRate:  decimal.Zero,
		TaxExemptLimit:       decimal.Zero,
		AbsenceDeductionRate: decimal.NewFromInt(1),
		LateDeductionPerHour: decimal.Zero,
		OvertimeRate:         decimal.NewFromFloat(1.5),
		AutoLoanDeduction:    true,
		WorkDays:             schedule.DefaultWorkDays,
		WorkStart:            schedule.DefaultWorkStart,
	}
}

// Calendar builds the work calendar for this configuration.
func (c Config) Calendar() *schedule.WorkCalendar {
	return schedule.NewWorkCalendar(c.WorkDays, c.WorkStart)
}
