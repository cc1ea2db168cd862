package payroll

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/employee"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/payroll"
	"github.com/nagnet2050/quick-sale-hr/internal/pkg/validator"
)

type fakePayrollRepo struct {
	entries   map[string]payroll.Entry
	templates map[string]payroll.Template
	deleted   []string
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		entries:   make(map[string]payroll.Entry),
		templates: make(map[string]payroll.Template),
	}
}

func (f *fakePayrollRepo) CreateEntry(ctx context.Context, e payroll.Entry) (payroll.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	f.entries[e.ID] = e
	return e, nil
}

func (f *fakePayrollRepo) GetEntryByID(ctx context.Context, id string) (payroll.Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return payroll.Entry{}, payroll.ErrEntryNotFound
	}
	return e, nil
}

func (f *fakePayrollRepo) GetEntryByEmployeePeriod(ctx context.Context, employeeID string, year, month int) (payroll.Entry, error) {
	for _, e := range f.entries {
		if e.EmployeeID == employeeID && e.Year == year && e.Month == month && e.Status != payroll.EntryStatusCancelled {
			return e, nil
		}
	}
	return payroll.Entry{}, payroll.ErrEntryNotFound
}

func (f *fakePayrollRepo) CountForPeriod(ctx context.Context, year, month int) (int, error) {
	count := 0
	for _, e := range f.entries {
		if e.Year == year && e.Month == month && e.Status != payroll.EntryStatusCancelled {
			count++
		}
	}
	return count, nil
}

func (f *fakePayrollRepo) ListEntries(ctx context.Context, filter payroll.EntryFilter) ([]payroll.Entry, int64, error) {
	var out []payroll.Entry
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (f *fakePayrollRepo) ListEntriesForPeriod(ctx context.Context, year, month int) ([]payroll.Entry, error) {
	var out []payroll.Entry
	for _, e := range f.entries {
		if e.Year == year && e.Month == month && e.Status != payroll.EntryStatusCancelled {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakePayrollRepo) UpdateEntry(ctx context.Context, e payroll.Entry) error {
	if _, ok := f.entries[e.ID]; !ok {
		return payroll.ErrEntryNotFound
	}
	f.entries[e.ID] = e
	return nil
}

func (f *fakePayrollRepo) DeleteEntry(ctx context.Context, id string) error {
	if _, ok := f.entries[id]; !ok {
		return payroll.ErrEntryNotFound
	}
	delete(f.entries, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePayrollRepo) CreateBatch(ctx context.Context, b payroll.Batch) (payroll.Batch, error) {
	return b, nil
}

func (f *fakePayrollRepo) GetBatchByPeriod(ctx context.Context, year, month int) (payroll.Batch, error) {
	return payroll.Batch{}, payroll.ErrBatchNotFound
}

func (f *fakePayrollRepo) GetSummary(ctx context.Context, year, month int) (payroll.SummaryResponse, error) {
	return payroll.SummaryResponse{Year: year, Month: month, ByStatus: map[string]int{}}, nil
}

func (f *fakePayrollRepo) GetTemplate(ctx context.Context, employeeID string) (payroll.Template, error) {
	t, ok := f.templates[employeeID]
	if !ok {
		return payroll.Template{}, payroll.ErrTemplateNotFound
	}
	return t, nil
}

func (f *fakePayrollRepo) UpsertTemplate(ctx context.Context, t payroll.Template) (payroll.Template, error) {
	f.templates[t.EmployeeID] = t
	return t, nil
}

func (f *fakePayrollRepo) ListActiveTemplates(ctx context.Context) ([]payroll.Template, error) {
	var out []payroll.Template
	for _, t := range f.templates {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

type serviceFixture struct {
	*composerFixture
	repo *fakePayrollRepo
	svc  *PayrollServiceImpl
}

// newServiceFixture wires the service against in-memory repositories.
// The database handle stays nil, so only code paths that run before the
// transaction wrapper are reachable here.
func newServiceFixture(cfg payroll.Config) *serviceFixture {
	cf := newComposerFixture(cfg)
	repo := newFakePayrollRepo()
	svc := &PayrollServiceImpl{
		payrollRepo:  repo,
		employeeRepo: cf.employees,
		composer:     cf.composer,
		amortizer:    cf.amortizer,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return &serviceFixture{composerFixture: cf, repo: repo, svc: svc}
}

func pendingEntry(f *serviceFixture, id, employeeID string, year, month int) payroll.Entry {
	period := payroll.Period{Year: year, Month: month}
	entry, err := f.composer.Compose(context.Background(), employeeID, period.Start(), period.End(), ComposeInputs{})
	if err != nil {
		panic(err)
	}
	entry.ID = id
	entry.Status = payroll.EntryStatusPending
	f.repo.entries[id] = entry
	return entry
}

func TestCreateEntry_RejectsInvalidRequest(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())

	_, err := f.svc.CreateEntry(context.Background(), payroll.CreateEntryRequest{
		EmployeeID: "emp-1",
		Month:      13,
		Year:       2025,
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "month")
}

func TestCreateEntry_DuplicatePeriod(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	pendingEntry(f, "e1", "emp-1", 2025, 3)

	_, err := f.svc.CreateEntry(context.Background(), payroll.CreateEntryRequest{
		EmployeeID: "emp-1",
		Month:      3,
		Year:       2025,
	})

	assert.ErrorIs(t, err, payroll.ErrEntryExists)
}

func TestUpdateEntry_RejectsNonEditable(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	e := pendingEntry(f, "e1", "emp-1", 2025, 3)
	e.Status = payroll.EntryStatusPaid
	f.repo.entries["e1"] = e

	_, err := f.svc.UpdateEntry(context.Background(), payroll.UpdateEntryRequest{ID: "e1"})

	assert.ErrorIs(t, err, payroll.ErrInvalidState)
}

func TestUpdateEntry_RejectsNegativeOverride(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	bonus := dec("-5")

	_, err := f.svc.UpdateEntry(context.Background(), payroll.UpdateEntryRequest{
		ID:    "e1",
		Bonus: &bonus,
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "bonus")
}

func TestDeleteEntry(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	pendingEntry(f, "e1", "emp-1", 2025, 3)

	require.NoError(t, f.svc.DeleteEntry(context.Background(), "e1"))
	assert.Equal(t, []string{"e1"}, f.repo.deleted)

	err := f.svc.DeleteEntry(context.Background(), "e1")
	assert.ErrorIs(t, err, payroll.ErrEntryNotFound)
}

func TestDeleteEntry_RejectsPaid(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	e := pendingEntry(f, "e1", "emp-1", 2025, 3)
	e.Status = payroll.EntryStatusPaid
	f.repo.entries["e1"] = e

	err := f.svc.DeleteEntry(context.Background(), "e1")

	assert.ErrorIs(t, err, payroll.ErrInvalidState)
	assert.Empty(t, f.repo.deleted)
}

func TestApproveEntry_RejectsNonPending(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	e := pendingEntry(f, "e1", "emp-1", 2025, 3)
	e.Status = payroll.EntryStatusApproved
	f.repo.entries["e1"] = e

	_, err := f.svc.ApproveEntry(context.Background(), "e1")

	assert.ErrorIs(t, err, payroll.ErrInvalidState)
}

func TestGenerateBatch_DuplicatePeriod(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	pendingEntry(f, "e1", "emp-1", 2025, 3)

	_, err := f.svc.GenerateBatch(context.Background(), payroll.GenerateBatchRequest{
		Month: 3,
		Year:  2025,
	})

	assert.ErrorIs(t, err, payroll.ErrDuplicateBatch)
}

func TestGenerateBatch_RequiresTemplates(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")

	_, err := f.svc.GenerateBatch(context.Background(), payroll.GenerateBatchRequest{
		Month: 3,
		Year:  2025,
	})

	assert.ErrorIs(t, err, payroll.ErrNoTemplates)
}

func TestGenerateBatch_OnlyTemplatedEmployeesReceiveEntries(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	f.addEmployee("emp-2", "2800")
	f.repo.templates["emp-1"] = payroll.Template{
		EmployeeID:  "emp-1",
		BasicSalary: dec("3500"),
		IsActive:    true,
	}

	period := payroll.Period{Year: 2025, Month: 3}
	active, err := f.employees.GetActive(context.Background())
	require.NoError(t, err)
	templates, err := f.repo.ListActiveTemplates(context.Background())
	require.NoError(t, err)

	eligible := eligibleTemplates(templates, active, period.End())
	require.Len(t, eligible, 1)

	batch, err := f.svc.generateEntries(context.Background(), period, eligible, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, batch.TotalEmployees)
	require.Len(t, f.repo.entries, 1)
	for _, e := range f.repo.entries {
		assert.Equal(t, "emp-1", e.EmployeeID)
		assert.True(t, e.Basic.Equal(dec("3500")), "basic = %s", e.Basic)
		assert.Equal(t, payroll.EntryStatusPending, e.Status)
	}
}

func TestEligibleTemplates(t *testing.T) {
	periodEnd := day(2025, 3, 31)
	future := day(2025, 6, 1)
	active := []employee.Employee{{ID: "emp-1", Active: true}, {ID: "emp-2", Active: true}}

	templates := []payroll.Template{
		{EmployeeID: "emp-1", BasicSalary: dec("3500"), IsActive: true},
		// Employee left; the template row survives.
		{EmployeeID: "emp-gone", BasicSalary: dec("2000"), IsActive: true},
		// Not yet in effect for the period.
		{EmployeeID: "emp-2", BasicSalary: dec("2800"), IsActive: true, EffectiveFrom: &future},
	}

	eligible := eligibleTemplates(templates, active, periodEnd)

	require.Len(t, eligible, 1)
	assert.Equal(t, "emp-1", eligible[0].EmployeeID)
}

func TestGenerateBatch_RejectsInvalidPeriod(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())

	_, err := f.svc.GenerateBatch(context.Background(), payroll.GenerateBatchRequest{
		Month: 0,
		Year:  2025,
	})

	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestRecalculate_NoChangeYieldsZeroDiff(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	f.fullAttendance("emp-1", day(2025, 3, 1), day(2025, 3, 31))
	entry := pendingEntry(f, "e1", "emp-1", 2025, 3)

	updated, err := f.svc.recalculate(context.Background(), entry)
	require.NoError(t, err)

	assert.True(t, updated.LastRecalcNetDiff.IsZero(), "diff = %s", updated.LastRecalcNetDiff)
	require.NotNil(t, updated.LastRecalcAt)
	assert.Equal(t, entry.Status, updated.Status)
	assert.Equal(t, entry.ID, updated.ID)
}

func TestRecalculate_ReportsNetDelta(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	f.fullAttendance("emp-1", day(2025, 3, 1), day(2025, 3, 31))
	entry := pendingEntry(f, "e1", "emp-1", 2025, 3)

	// Simulate an entry generated before a correction landed: the stored
	// net no longer matches what composition produces.
	entry.Net = entry.Net.Sub(dec("40"))

	updated, err := f.svc.recalculate(context.Background(), entry)
	require.NoError(t, err)

	assert.True(t, updated.LastRecalcNetDiff.Equal(dec("40")), "diff = %s", updated.LastRecalcNetDiff)

	// A second run from the corrected entry reports no further drift.
	again, err := f.svc.recalculate(context.Background(), updated)
	require.NoError(t, err)
	assert.True(t, again.LastRecalcNetDiff.IsZero())
}

func TestRecalculate_RejectsPaidEntry(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	entry := pendingEntry(f, "e1", "emp-1", 2025, 3)
	entry.Status = payroll.EntryStatusPaid

	_, err := f.svc.recalculate(context.Background(), entry)

	assert.ErrorIs(t, err, payroll.ErrInvalidState)
}

func TestListEntries_PagingMath(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	pendingEntry(f, "e1", "emp-1", 2025, 1)
	pendingEntry(f, "e2", "emp-1", 2025, 2)
	pendingEntry(f, "e3", "emp-1", 2025, 3)

	resp, err := f.svc.ListEntries(context.Background(), payroll.EntryFilter{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.Entries, 3)
}

func TestGetSummary_RejectsInvalidPeriod(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())

	_, err := f.svc.GetSummary(context.Background(), 2025, 13)

	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestUpsertTemplate_UnknownEmployee(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())

	_, err := f.svc.UpsertTemplate(context.Background(), payroll.UpsertTemplateRequest{
		EmployeeID:  "ghost",
		BasicSalary: dec("3000"),
	})

	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUpsertTemplate_RoundTrip(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")

	from := "2025-01-01"
	resp, err := f.svc.UpsertTemplate(context.Background(), payroll.UpsertTemplateRequest{
		EmployeeID:       "emp-1",
		BasicSalary:      dec("3500"),
		HousingAllowance: dec("400"),
		EffectiveFrom:    &from,
	})
	require.NoError(t, err)

	assert.True(t, resp.BasicSalary.Equal(dec("3500")))
	assert.True(t, resp.IsActive)
	require.NotNil(t, resp.EffectiveFrom)
	assert.Equal(t, "2025-01-01", *resp.EffectiveFrom)

	got, err := f.svc.GetTemplate(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.True(t, got.HousingAllowance.Equal(dec("400")))
}

func TestInputsForEmployee_TemplateGating(t *testing.T) {
	f := newServiceFixture(payroll.DefaultConfig())
	f.addEmployee("emp-1", "3000")
	periodEnd := day(2025, 3, 31)

	// No template: zero inputs, base salary alone.
	in, err := f.svc.inputsForEmployee(context.Background(), "emp-1", periodEnd)
	require.NoError(t, err)
	assert.Nil(t, in.Basic)

	// Active template in effect.
	f.repo.templates["emp-1"] = payroll.Template{
		EmployeeID:  "emp-1",
		BasicSalary: dec("3500"),
		IsActive:    true,
	}
	in, err = f.svc.inputsForEmployee(context.Background(), "emp-1", periodEnd)
	require.NoError(t, err)
	require.NotNil(t, in.Basic)
	assert.True(t, in.Basic.Equal(dec("3500")))

	// Template effective only after the period closes.
	future := day(2025, 6, 1)
	f.repo.templates["emp-1"] = payroll.Template{
		EmployeeID:    "emp-1",
		BasicSalary:   dec("3500"),
		IsActive:      true,
		EffectiveFrom: &future,
	}
	in, err = f.svc.inputsForEmployee(context.Background(), "emp-1", periodEnd)
	require.NoError(t, err)
	assert.Nil(t, in.Basic)

	// Inactive template.
	f.repo.templates["emp-1"] = payroll.Template{
		EmployeeID:  "emp-1",
		BasicSalary: dec("3500"),
	}
	in, err = f.svc.inputsForEmployee(context.Background(), "emp-1", periodEnd)
	require.NoError(t, err)
	assert.Nil(t, in.Basic)
}
