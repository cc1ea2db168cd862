package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/attendance"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/employee"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/leave"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/loan"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/payroll"
	attendanceService "github.com/nagnet2050/quick-sale-hr/internal/service/attendance"
	leaveService "github.com/nagnet2050/quick-sale-hr/internal/service/leave"
	loanService "github.com/nagnet2050/quick-sale-hr/internal/service/loan"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetActive(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeAttendanceRepo struct {
	records []attendance.Record
}

func (f *fakeAttendanceRepo) GetByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	return f.records, nil
}

type fakeLeaveRepo struct {
	records []leave.Record
}

func (f *fakeLeaveRepo) GetApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]leave.Record, error) {
	return f.records, nil
}

type fakeLoanRepo struct {
	loans []loan.Loan
}

func (f *fakeLoanRepo) Create(ctx context.Context, l loan.Loan) (loan.Loan, error) {
	f.loans = append(f.loans, l)
	return l, nil
}

func (f *fakeLoanRepo) GetByID(ctx context.Context, id string) (loan.Loan, error) {
	for _, l := range f.loans {
		if l.ID == id {
			return l, nil
		}
	}
	return loan.Loan{}, loan.ErrLoanNotFound
}

func (f *fakeLoanRepo) GetActiveByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	var out []loan.Loan
	for _, l := range f.loans {
		if l.EmployeeID == employeeID && l.Status == loan.LoanStatusActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLoanRepo) ListByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	return f.loans, nil
}

func (f *fakeLoanRepo) UpdateAmortization(ctx context.Context, id string, remaining decimal.Decimal, paidInstallments int, status loan.LoanStatus, completedDate *time.Time) error {
	for i := range f.loans {
		if f.loans[i].ID == id {
			f.loans[i].RemainingAmount = &remaining
			f.loans[i].PaidInstallments = paidInstallments
			f.loans[i].Status = status
			f.loans[i].CompletedDate = completedDate
			return nil
		}
	}
	return loan.ErrLoanNotFound
}

type composerFixture struct {
	employees  *fakeEmployeeRepo
	attendance *fakeAttendanceRepo
	leaves     *fakeLeaveRepo
	loans      *fakeLoanRepo
	amortizer  *loanService.Amortizer
	composer   *Composer
}

func newComposerFixture(cfg payroll.Config) *composerFixture {
	f := &composerFixture{
		employees:  &fakeEmployeeRepo{employees: make(map[string]employee.Employee)},
		attendance: &fakeAttendanceRepo{},
		leaves:     &fakeLeaveRepo{},
		loans:      &fakeLoanRepo{},
	}
	aggregator := attendanceService.NewAggregator(f.attendance, cfg.Calendar())
	partitioner := leaveService.NewPartitioner(f.leaves)
	f.amortizer = loanService.NewAmortizer(f.loans, cfg.AutoLoanDeduction)
	taxCalc := NewTaxCalculator(cfg)
	f.composer = NewComposer(f.employees, aggregator, partitioner, f.amortizer, taxCalc, cfg)
	return f
}

func (f *composerFixture) addEmployee(id, salary string) {
	f.employees.employees[id] = employee.Employee{
		ID:       id,
		Code:     "EMP-" + id,
		FullName: "Employee " + id,
		Active:   true,
		Salary:   dec(salary),
	}
}

// fullAttendance records an on-time check-in for every day of the range
// so the aggregator sees no absence and no lateness.
func (f *composerFixture) fullAttendance(employeeID string, start, end time.Time, except ...time.Time) {
	skip := make(leave.DateSet)
	for _, d := range except {
		skip.Add(d)
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if skip.Has(d) {
			continue
		}
		checkIn := time.Date(d.Year(), d.Month(), d.Day(), 8, 0, 0, 0, time.UTC)
		f.attendance.records = append(f.attendance.records, attendance.Record{
			EmployeeID:  employeeID,
			Date:        d,
			CheckInTime: &checkIn,
		})
	}
}

func TestCompose_FullAttendanceNoDeductions(t *testing.T) {
	cfg := payroll.DefaultConfig()
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "3000")

	start := day(2025, 3, 1)
	end := day(2025, 3, 31)
	f.fullAttendance("emp-1", start, end)

	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{})
	require.NoError(t, err)

	assert.True(t, entry.GrossSalary.Equal(dec("3000")), "gross = %s", entry.GrossSalary)
	assert.True(t, entry.Tax.Equal(dec("300")), "tax = %s", entry.Tax)
	assert.True(t, entry.Insurance.Equal(dec("60")), "insurance = %s", entry.Insurance)
	assert.True(t, entry.Deductions.IsZero())
	assert.True(t, entry.TotalDeductions.Equal(dec("360")))
	assert.True(t, entry.Net.Equal(dec("2640")), "net = %s", entry.Net)
	assert.Equal(t, 0, entry.AbsenceDays)
	assert.Equal(t, 0, entry.LateMinutes)
}

func TestCompose_UnpaidLeavePricedAtDailyRate(t *testing.T) {
	// Seven-day work week over April gives exactly 30 working days, so
	// the daily rate on a 3000 salary is 100.
	cfg := payroll.DefaultConfig()
	cfg.WorkDays = "0,1,2,3,4,5,6"
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "3000")

	start := day(2025, 4, 1)
	end := day(2025, 4, 30)
	f.fullAttendance("emp-1", start, end, day(2025, 4, 10), day(2025, 4, 11))
	f.leaves.records = []leave.Record{{
		EmployeeID: "emp-1",
		Type:       leave.LeaveTypeUnpaid,
		StartDate:  day(2025, 4, 10),
		EndDate:    day(2025, 4, 11),
		Paid:       false,
	}}

	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{})
	require.NoError(t, err)

	assert.Equal(t, 2, entry.UnpaidLeaveDays)
	assert.True(t, entry.UnpaidLeaveDeduction.Equal(dec("200")), "unpaid = %s", entry.UnpaidLeaveDeduction)
	// Leave days do not double as absence.
	assert.Equal(t, 0, entry.AbsenceDays)
	assert.True(t, entry.AbsenceDeduction.IsZero())

	// 3000 gross, 200 pre-tax, 10% tax on 2800, 2% insurance on 3000.
	assert.True(t, entry.Tax.Equal(dec("280")), "tax = %s", entry.Tax)
	assert.True(t, entry.Net.Equal(dec("2460")), "net = %s", entry.Net)
}

func TestCompose_AbsenceAdjustedForLeave(t *testing.T) {
	cfg := payroll.DefaultConfig()
	cfg.WorkDays = "0,1,2,3,4,5,6"
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "3000")

	start := day(2025, 4, 1)
	end := day(2025, 4, 30)
	// Three recordless days, two of them covered by unpaid leave: one
	// raw absence remains.
	f.fullAttendance("emp-1", start, end, day(2025, 4, 10), day(2025, 4, 11), day(2025, 4, 12))
	f.leaves.records = []leave.Record{{
		EmployeeID: "emp-1",
		Type:       leave.LeaveTypeUnpaid,
		StartDate:  day(2025, 4, 10),
		EndDate:    day(2025, 4, 11),
		Paid:       false,
	}}

	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{})
	require.NoError(t, err)

	assert.Equal(t, 1, entry.AbsenceDays)
	assert.True(t, entry.AbsenceDeduction.Equal(dec("100")), "absence = %s", entry.AbsenceDeduction)
	assert.Equal(t, 2, entry.UnpaidLeaveDays)
}

func TestCompose_ZeroWorkingDaysFallsBackToThirtieths(t *testing.T) {
	// Fri-Sat range under a Sun-Thu calendar has no working days; the
	// daily rate falls back to basic/30.
	cfg := payroll.DefaultConfig()
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "3000")

	start := day(2025, 3, 7)
	end := day(2025, 3, 8)
	f.leaves.records = []leave.Record{{
		EmployeeID: "emp-1",
		Type:       leave.LeaveTypeUnpaid,
		StartDate:  day(2025, 3, 7),
		EndDate:    day(2025, 3, 7),
		Paid:       false,
	}}

	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{})
	require.NoError(t, err)

	assert.True(t, entry.UnpaidLeaveDeduction.Equal(dec("100")), "unpaid = %s", entry.UnpaidLeaveDeduction)
}

func TestCompose_OvertimePricedFromHourlyRate(t *testing.T) {
	cfg := payroll.DefaultConfig()
	f := newComposerFixture(cfg)
	// 2400/240 gives an hourly rate of 10.
	f.addEmployee("emp-1", "2400")

	start := day(2025, 3, 1)
	end := day(2025, 3, 31)
	f.fullAttendance("emp-1", start, end)

	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{
		OvertimeHours: dec("4"),
	})
	require.NoError(t, err)

	// 4h x 10 x 1.5
	assert.True(t, entry.OvertimeAmount.Equal(dec("60")), "overtime = %s", entry.OvertimeAmount)
	assert.True(t, entry.GrossSalary.Equal(dec("2460")))
}

func TestCompose_LateDeductionFallsBackToHourlyRate(t *testing.T) {
	cfg := payroll.DefaultConfig()
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "2400")

	// Single working day, checked in 30 minutes late.
	checkIn := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	f.attendance.records = []attendance.Record{{
		EmployeeID:  "emp-1",
		Date:        day(2025, 3, 2),
		CheckInTime: &checkIn,
	}}

	entry, err := f.composer.Compose(context.Background(), "emp-1", day(2025, 3, 2), day(2025, 3, 2), ComposeInputs{})
	require.NoError(t, err)

	assert.Equal(t, 30, entry.LateMinutes)
	// 10/hour x 30min
	assert.True(t, entry.LateDeduction.Equal(dec("5")), "late = %s", entry.LateDeduction)
}

func TestCompose_ConfiguredLatePricePreferred(t *testing.T) {
	cfg := payroll.DefaultConfig()
	cfg.LateDeductionPerHour = dec("20")
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "2400")

	checkIn := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	f.attendance.records = []attendance.Record{{
		EmployeeID:  "emp-1",
		Date:        day(2025, 3, 2),
		CheckInTime: &checkIn,
	}}

	entry, err := f.composer.Compose(context.Background(), "emp-1", day(2025, 3, 2), day(2025, 3, 2), ComposeInputs{})
	require.NoError(t, err)

	assert.True(t, entry.LateDeduction.Equal(dec("20")), "late = %s", entry.LateDeduction)
}

func TestCompose_ItemizedAllowancesBeatLumpSum(t *testing.T) {
	cfg := payroll.DefaultConfig()
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "3000")
	start := day(2025, 3, 1)
	end := day(2025, 3, 31)
	f.fullAttendance("emp-1", start, end)

	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{
		HousingAllowance: dec("300"),
		FoodAllowance:    dec("100"),
		AllowancesTotal:  dec("999"),
	})
	require.NoError(t, err)

	assert.True(t, entry.Allowances.Equal(dec("400")), "allowances = %s", entry.Allowances)
}

func TestCompose_LumpSumAllowancesWhenNothingItemized(t *testing.T) {
	cfg := payroll.DefaultConfig()
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "3000")
	start := day(2025, 3, 1)
	end := day(2025, 3, 31)
	f.fullAttendance("emp-1", start, end)

	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{
		AllowancesTotal: dec("500"),
	})
	require.NoError(t, err)

	assert.True(t, entry.Allowances.Equal(dec("500")))
	assert.True(t, entry.GrossSalary.Equal(dec("3500")))
}

func TestCompose_LoanDueCharged(t *testing.T) {
	cfg := payroll.DefaultConfig()
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "3000")
	start := day(2025, 3, 1)
	end := day(2025, 3, 31)
	f.fullAttendance("emp-1", start, end)

	monthly := dec("100")
	f.loans.loans = []loan.Loan{{
		ID:               "l1",
		EmployeeID:       "emp-1",
		Type:             loan.LoanTypeLoan,
		Amount:           dec("1200"),
		MonthlyDeduction: &monthly,
		IssuedDate:       day(2025, 1, 1),
		Status:           loan.LoanStatusActive,
	}}

	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{})
	require.NoError(t, err)

	assert.True(t, entry.LoanDeduction.Equal(dec("100")), "loan = %s", entry.LoanDeduction)
	assert.True(t, entry.Deductions.Equal(dec("100")))
}

func TestCompose_BasicOverrideWins(t *testing.T) {
	cfg := payroll.DefaultConfig()
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "3000")
	start := day(2025, 3, 1)
	end := day(2025, 3, 31)
	f.fullAttendance("emp-1", start, end)

	override := dec("4000")
	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{
		Basic: &override,
	})
	require.NoError(t, err)

	assert.True(t, entry.Basic.Equal(dec("4000")))
	assert.True(t, entry.GrossSalary.Equal(dec("4000")))
}

func TestCompose_NetEqualsGrossMinusTotalDeductions(t *testing.T) {
	cfg := payroll.DefaultConfig()
	f := newComposerFixture(cfg)
	f.addEmployee("emp-1", "3137.49")
	start := day(2025, 3, 1)
	end := day(2025, 3, 31)
	f.fullAttendance("emp-1", start, end, day(2025, 3, 4))

	monthly := dec("83.33")
	f.loans.loans = []loan.Loan{{
		ID:               "l1",
		EmployeeID:       "emp-1",
		Type:             loan.LoanTypeAdvance,
		Amount:           dec("500"),
		MonthlyDeduction: &monthly,
		IssuedDate:       day(2025, 1, 15),
		Status:           loan.LoanStatusActive,
	}}

	entry, err := f.composer.Compose(context.Background(), "emp-1", start, end, ComposeInputs{
		Bonus:           dec("150"),
		Commission:      dec("42.50"),
		OvertimeHours:   dec("2.5"),
		OtherDeductions: dec("19.99"),
	})
	require.NoError(t, err)

	want := entry.GrossSalary.Sub(entry.TotalDeductions).Round(2)
	assert.True(t, entry.Net.Equal(want), "net = %s, want %s", entry.Net, want)
	assert.True(t, entry.TotalDeductions.Equal(
		entry.Deductions.Add(entry.Tax).Add(entry.Insurance).Add(entry.HealthInsurance)))
}

func TestCompose_UnknownEmployee(t *testing.T) {
	f := newComposerFixture(payroll.DefaultConfig())

	_, err := f.composer.Compose(context.Background(), "ghost", day(2025, 3, 1), day(2025, 3, 31), ComposeInputs{})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestInputsFromTemplate(t *testing.T) {
	hourly := dec("12.5")
	tpl := payroll.Template{
		EmployeeID:       "emp-1",
		BasicSalary:      dec("3500"),
		HousingAllowance: dec("400"),
		OvertimeRate:     dec("2"),
		HourlyRate:       &hourly,
	}

	in := InputsFromTemplate(tpl)

	require.NotNil(t, in.Basic)
	assert.True(t, in.Basic.Equal(dec("3500")))
	assert.True(t, in.HousingAllowance.Equal(dec("400")))
	require.NotNil(t, in.OvertimeRate)
	assert.True(t, in.OvertimeRate.Equal(dec("2")))
	require.NotNil(t, in.HourlyRate)
	assert.True(t, in.HourlyRate.Equal(dec("12.5")))
}

func TestInputsFromTemplate_ZeroBasicNotForwarded(t *testing.T) {
	in := InputsFromTemplate(payroll.Template{EmployeeID: "emp-1"})

	assert.Nil(t, in.Basic)
	assert.Nil(t, in.OvertimeRate)
	assert.Nil(t, in.HourlyRate)
}

func TestInputsFromEntry_KeepsManualComponents(t *testing.T) {
	e := payroll.Entry{
		Basic:           dec("3000"),
		Allowances:      dec("500"),
		Bonus:           dec("100"),
		Commission:      dec("50"),
		Incentives:      dec("25"),
		OvertimeHours:   dec("3"),
		OtherDeductions: dec("10"),
	}

	in := InputsFromEntry(e)

	require.NotNil(t, in.Basic)
	assert.True(t, in.Basic.Equal(dec("3000")))
	assert.True(t, in.AllowancesTotal.Equal(dec("500")))
	assert.True(t, in.Bonus.Equal(dec("100")))
	assert.True(t, in.OvertimeHours.Equal(dec("3")))
	assert.True(t, in.OtherDeductions.Equal(dec("10")))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
