package payroll

import "context"

type PayrollService interface {
	CreateEntry(ctx context.Context, req CreateEntryRequest) (EntryResponse, error)
	GetEntry(ctx context.Context, id string) (EntryResponse, error)
	ListEntries(ctx context.Context, filter EntryFilter) (ListEntriesResponse, error)
	UpdateEntry(ctx context.Context, req UpdateEntryRequest) (EntryResponse, error)
	DeleteEntry(ctx context.Context, id string) error

	ApproveEntry(ctx context.Context, id string) (EntryResponse, error)
	MarkPaid(ctx context.Context, id string) (EntryResponse, error)
	RecalculateEntry(ctx context.Context, id string) (EntryResponse, error)

	GenerateBatch(ctx context.Context, req GenerateBatchRequest) (BatchResponse, error)
	RecalculateBatch(ctx context.Context, req RecalculateBatchRequest) (RecalcBatchResponse, error)
	GetSummary(ctx context.Context, year, month int) (SummaryResponse, error)

	GetTemplate(ctx context.Context, employeeID string) (TemplateResponse, error)
	UpsertTemplate(ctx context.Context, req UpsertTemplateRequest) (TemplateResponse, error)
}
