package payroll

import "context"

// PayrollRepository persists payroll entries, salary templates and
// batch summaries. Implementations must honor the transaction handle
// carried in the context.
type PayrollRepository interface {
	CreateEntry(ctx context.Context, e Entry) (Entry, error)
	GetEntryByID(ctx context.Context, id string) (Entry, error)
	// GetEntryByEmployeePeriod returns the non-cancelled entry for the
	// pair, if any.
	GetEntryByEmployeePeriod(ctx context.Context, employeeID string, year, month int) (Entry, error)
	// CountForPeriod counts non-cancelled entries in a period; batch
	// generation uses it as its duplicate check.
	CountForPeriod(ctx context.Context, year, month int) (int, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, int64, error)
	ListEntriesForPeriod(ctx context.Context, year, month int) ([]Entry, error)
	UpdateEntry(ctx context.Context, e Entry) error
	DeleteEntry(ctx context.Context, id string) error

	CreateBatch(ctx context.Context, b Batch) (Batch, error)
	GetBatchByPeriod(ctx context.Context, year, month int) (Batch, error)

	GetSummary(ctx context.Context, year, month int) (SummaryResponse, error)

	GetTemplate(ctx context.Context, employeeID string) (Template, error)
	UpsertTemplate(ctx context.Context, t Template) (Template, error)
	ListActiveTemplates(ctx context.Context) ([]Template, error)
}
