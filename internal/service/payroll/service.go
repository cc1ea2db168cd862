package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/employee"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/payroll"
	loanService "github.com/nagnet2050/quick-sale-hr/internal/service/loan"

	"github.com/nagnet2050/quick-sale-hr/internal/pkg/database"
	"github.com/nagnet2050/quick-sale-hr/internal/repository/postgresql"
)

type PayrollServiceImpl struct {
	db           *database.DB
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	composer     *Composer
	amortizer    *loanService.Amortizer
	logger       *slog.Logger
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	composer *Composer,
	amortizer *loanService.Amortizer,
	logger *slog.Logger,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		db:           db,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		composer:     composer,
		amortizer:    amortizer,
		logger:       logger,
	}
}

// actorFromContext extracts the acting user from JWT claims, when a
// token is present. Batch jobs and tests run without one.
func actorFromContext(ctx context.Context) *string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil
	}
	return &userID
}

func (s *PayrollServiceImpl) CreateEntry(ctx context.Context, req payroll.CreateEntryRequest) (payroll.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.EntryResponse{}, err
	}

	period := payroll.Period{Year: req.Year, Month: req.Month}
	if !period.Valid() {
		return payroll.EntryResponse{}, payroll.ErrInvalidPeriod
	}

	if _, err := s.payrollRepo.GetEntryByEmployeePeriod(ctx, req.EmployeeID, req.Year, req.Month); err == nil {
		return payroll.EntryResponse{}, payroll.ErrEntryExists
	} else if !errors.Is(err, payroll.ErrEntryNotFound) {
		return payroll.EntryResponse{}, err
	}

	inputs, err := s.inputsForEmployee(ctx, req.EmployeeID, period.End())
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	inputs.Bonus = req.Bonus
	inputs.Commission = req.Commission
	inputs.Incentives = req.Incentives
	inputs.OvertimeHours = req.OvertimeHours
	inputs.OtherDeductions = req.OtherDeductions

	entry, err := s.composer.Compose(ctx, req.EmployeeID, period.Start(), period.End(), inputs)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	entry.Status = payroll.EntryStatusPending
	entry.Notes = req.Notes
	entry.GeneratedAt = time.Now().UTC()
	if req.GeneratedBy != nil {
		entry.GeneratedBy = req.GeneratedBy
	} else {
		entry.GeneratedBy = actorFromContext(ctx)
	}

	var created payroll.Entry
	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		created, err = s.payrollRepo.CreateEntry(txCtx, entry)
		return err
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	return toEntryResponse(created), nil
}

// inputsForEmployee seeds compose inputs from the employee's active
// salary template, falling back to the stored base salary alone when no
// usable template exists.
func (s *PayrollServiceImpl) inputsForEmployee(ctx context.Context, employeeID string, periodEnd time.Time) (ComposeInputs, error) {
	tpl, err := s.payrollRepo.GetTemplate(ctx, employeeID)
	if err != nil {
		if errors.Is(err, payroll.ErrTemplateNotFound) {
			return ComposeInputs{}, nil
		}
		return ComposeInputs{}, err
	}
	if !tpl.IsActive {
		return ComposeInputs{}, nil
	}
	if tpl.EffectiveFrom != nil && tpl.EffectiveFrom.After(periodEnd) {
		return ComposeInputs{}, nil
	}
	return InputsFromTemplate(tpl), nil
}

func (s *PayrollServiceImpl) GetEntry(ctx context.Context, id string) (payroll.EntryResponse, error) {
	entry, err := s.payrollRepo.GetEntryByID(ctx, id)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	return toEntryResponse(entry), nil
}

func (s *PayrollServiceImpl) ListEntries(ctx context.Context, filter payroll.EntryFilter) (payroll.ListEntriesResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListEntriesResponse{}, err
	}

	entries, total, err := s.payrollRepo.ListEntries(ctx, filter)
	if err != nil {
		return payroll.ListEntriesResponse{}, err
	}

	resp := payroll.ListEntriesResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Entries:    make([]payroll.EntryResponse, 0, len(entries)),
	}
	if filter.Limit > 0 {
		resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toEntryResponse(e))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) UpdateEntry(ctx context.Context, req payroll.UpdateEntryRequest) (payroll.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.EntryResponse{}, err
	}

	entry, err := s.payrollRepo.GetEntryByID(ctx, req.ID)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	if !entry.Editable() {
		return payroll.EntryResponse{}, payroll.ErrInvalidState
	}

	inputs := InputsFromEntry(entry)
	if req.Bonus != nil {
		inputs.Bonus = *req.Bonus
	}
	if req.Commission != nil {
		inputs.Commission = *req.Commission
	}
	if req.Incentives != nil {
		inputs.Incentives = *req.Incentives
	}
	if req.OvertimeHours != nil {
		inputs.OvertimeHours = *req.OvertimeHours
	}
	if req.OtherDeductions != nil {
		inputs.OtherDeductions = *req.OtherDeductions
	}

	recomposed, err := s.composer.Compose(ctx, entry.EmployeeID, entry.PeriodStart, entry.PeriodEnd, inputs)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	updated := mergeComposed(entry, recomposed)
	if req.Notes != nil {
		updated.Notes = req.Notes
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		return s.payrollRepo.UpdateEntry(txCtx, updated)
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	return toEntryResponse(updated), nil
}

func (s *PayrollServiceImpl) DeleteEntry(ctx context.Context, id string) error {
	entry, err := s.payrollRepo.GetEntryByID(ctx, id)
	if err != nil {
		return err
	}
	if !entry.Editable() {
		return payroll.ErrInvalidState
	}
	return s.payrollRepo.DeleteEntry(ctx, id)
}

func (s *PayrollServiceImpl) ApproveEntry(ctx context.Context, id string) (payroll.EntryResponse, error) {
	entry, err := s.payrollRepo.GetEntryByID(ctx, id)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	if entry.Status != payroll.EntryStatusPending {
		return payroll.EntryResponse{}, payroll.ErrInvalidState
	}

	now := time.Now().UTC()
	entry.Status = payroll.EntryStatusApproved
	entry.ApprovedAt = &now
	entry.ApprovedBy = actorFromContext(ctx)

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		return s.payrollRepo.UpdateEntry(txCtx, entry)
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	return toEntryResponse(entry), nil
}

// MarkPaid moves an approved entry to paid and applies the entry's loan
// deduction against the employee's loan balances. The status check and
// the loan mutation share one transaction, so a concurrent second call
// cannot apply the payment twice.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, id string) (payroll.EntryResponse, error) {
	var entry payroll.Entry
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		var err error
		entry, err = s.payrollRepo.GetEntryByID(txCtx, id)
		if err != nil {
			return err
		}
		if entry.Status != payroll.EntryStatusApproved {
			return payroll.ErrInvalidState
		}

		now := time.Now().UTC()
		entry.Status = payroll.EntryStatusPaid
		entry.PaidAt = &now
		entry.PaymentDate = &now
		entry.PaidBy = actorFromContext(ctx)

		if err := s.payrollRepo.UpdateEntry(txCtx, entry); err != nil {
			return err
		}

		// The amount applied is exactly what the entry charged, not a
		// fresh computation.
		return s.amortizer.ApplyPayment(txCtx, entry.EmployeeID, entry.LoanDeduction, entry.PeriodEnd)
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	return toEntryResponse(entry), nil
}

// RecalculateEntry re-runs the composition against current attendance,
// leave and loan state and stores the net delta as the operator-facing
// signal that inputs changed since generation.
func (s *PayrollServiceImpl) RecalculateEntry(ctx context.Context, id string) (payroll.EntryResponse, error) {
	entry, err := s.payrollRepo.GetEntryByID(ctx, id)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	updated, err := s.recalculate(ctx, entry)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		return s.payrollRepo.UpdateEntry(txCtx, updated)
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	return toEntryResponse(updated), nil
}

func (s *PayrollServiceImpl) recalculate(ctx context.Context, entry payroll.Entry) (payroll.Entry, error) {
	if !entry.Editable() {
		return payroll.Entry{}, payroll.ErrInvalidState
	}

	netBefore := entry.Net

	recomposed, err := s.composer.Compose(ctx, entry.EmployeeID, entry.PeriodStart, entry.PeriodEnd, InputsFromEntry(entry))
	if err != nil {
		return payroll.Entry{}, err
	}

	updated := mergeComposed(entry, recomposed)
	now := time.Now().UTC()
	updated.LastRecalcNetDiff = updated.Net.Sub(netBefore).Round(2)
	updated.LastRecalcAt = &now
	return updated, nil
}

func (s *PayrollServiceImpl) GenerateBatch(ctx context.Context, req payroll.GenerateBatchRequest) (payroll.BatchResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BatchResponse{}, err
	}

	period := payroll.Period{Year: req.Year, Month: req.Month}
	if !period.Valid() {
		return payroll.BatchResponse{}, payroll.ErrInvalidPeriod
	}

	count, err := s.payrollRepo.CountForPeriod(ctx, req.Year, req.Month)
	if err != nil {
		return payroll.BatchResponse{}, err
	}
	if count > 0 {
		return payroll.BatchResponse{}, payroll.ErrDuplicateBatch
	}

	employees, err := s.employeeRepo.GetActive(ctx)
	if err != nil {
		return payroll.BatchResponse{}, err
	}
	templates, err := s.payrollRepo.ListActiveTemplates(ctx)
	if err != nil {
		return payroll.BatchResponse{}, err
	}

	// Only active employees with an active template in effect receive a
	// batch entry; manual creation still covers the rest.
	eligible := eligibleTemplates(templates, employees, period.End())
	if len(eligible) == 0 {
		return payroll.BatchResponse{}, payroll.ErrNoTemplates
	}

	generatedBy := req.GeneratedBy
	if generatedBy == nil {
		generatedBy = actorFromContext(ctx)
	}

	var batch payroll.Batch
	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		generated, err := s.generateEntries(txCtx, period, eligible, generatedBy, req.Notes)
		if err != nil {
			return err
		}

		batch, err = s.payrollRepo.CreateBatch(txCtx, generated)
		return err
	})
	if err != nil {
		return payroll.BatchResponse{}, err
	}

	s.logger.Info("payroll batch generated",
		"period", periodLabel(req.Year, req.Month),
		"employees", batch.TotalEmployees,
		"total_net", batch.TotalNet.String(),
	)

	return toBatchResponse(batch), nil
}

// eligibleTemplates pairs active salary templates with active employees.
// Inactive or departed employees keep their template rows but fall out
// of the batch, as do templates not yet in effect for the period.
func eligibleTemplates(templates []payroll.Template, employees []employee.Employee, periodEnd time.Time) []payroll.Template {
	active := make(map[string]bool, len(employees))
	for _, emp := range employees {
		active[emp.ID] = true
	}

	eligible := make([]payroll.Template, 0, len(templates))
	for _, tpl := range templates {
		if !active[tpl.EmployeeID] {
			continue
		}
		if tpl.EffectiveFrom != nil && tpl.EffectiveFrom.After(periodEnd) {
			continue
		}
		eligible = append(eligible, tpl)
	}
	return eligible
}

func (s *PayrollServiceImpl) generateEntries(ctx context.Context, period payroll.Period, templates []payroll.Template, generatedBy *string, notes *string) (payroll.Batch, error) {
	now := time.Now().UTC()
	batch := payroll.Batch{
		Month:       period.Month,
		Year:        period.Year,
		PeriodStart: period.Start(),
		PeriodEnd:   period.End(),
		Status:      payroll.BatchStatusDraft,
		GeneratedBy: generatedBy,
		GeneratedAt: now,
		Notes:       notes,
	}

	for _, tpl := range templates {
		entry, err := s.composer.Compose(ctx, tpl.EmployeeID, period.Start(), period.End(), InputsFromTemplate(tpl))
		if err != nil {
			// One failed employee aborts the whole run; a half
			// generated period is an inconsistent state.
			return payroll.Batch{}, fmt.Errorf("compose payroll for employee %s: %w", tpl.EmployeeID, err)
		}

		entry.Status = payroll.EntryStatusPending
		entry.GeneratedAt = now
		entry.GeneratedBy = generatedBy

		if _, err := s.payrollRepo.CreateEntry(ctx, entry); err != nil {
			return payroll.Batch{}, fmt.Errorf("persist payroll for employee %s: %w", tpl.EmployeeID, err)
		}

		batch.TotalEmployees++
		batch.TotalGross = batch.TotalGross.Add(entry.GrossSalary)
		batch.TotalDeductions = batch.TotalDeductions.Add(entry.TotalDeductions)
		batch.TotalNet = batch.TotalNet.Add(entry.Net)
	}

	return batch, nil
}

func (s *PayrollServiceImpl) RecalculateBatch(ctx context.Context, req payroll.RecalculateBatchRequest) (payroll.RecalcBatchResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecalcBatchResponse{}, err
	}

	entries, err := s.payrollRepo.ListEntriesForPeriod(ctx, req.Year, req.Month)
	if err != nil {
		return payroll.RecalcBatchResponse{}, err
	}

	resp := payroll.RecalcBatchResponse{
		Month:        req.Month,
		Year:         req.Year,
		TotalNetDiff: decimal.Zero,
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		for _, entry := range entries {
			if !entry.Editable() {
				resp.Skipped++
				continue
			}

			updated, err := s.recalculate(txCtx, entry)
			if err != nil {
				return fmt.Errorf("recalculate entry %s: %w", entry.ID, err)
			}
			if err := s.payrollRepo.UpdateEntry(txCtx, updated); err != nil {
				return err
			}

			resp.Recalculated++
			if !updated.LastRecalcNetDiff.IsZero() {
				resp.Changed++
				resp.TotalNetDiff = resp.TotalNetDiff.Add(updated.LastRecalcNetDiff)
			}
		}
		return nil
	})
	if err != nil {
		return payroll.RecalcBatchResponse{}, err
	}

	s.logger.Info("payroll batch recalculated",
		"period", periodLabel(req.Year, req.Month),
		"recalculated", resp.Recalculated,
		"changed", resp.Changed,
		"total_net_diff", resp.TotalNetDiff.String(),
	)

	return resp, nil
}

func (s *PayrollServiceImpl) GetSummary(ctx context.Context, year, month int) (payroll.SummaryResponse, error) {
	period := payroll.Period{Year: year, Month: month}
	if !period.Valid() {
		return payroll.SummaryResponse{}, payroll.ErrInvalidPeriod
	}
	return s.payrollRepo.GetSummary(ctx, year, month)
}

func (s *PayrollServiceImpl) GetTemplate(ctx context.Context, employeeID string) (payroll.TemplateResponse, error) {
	tpl, err := s.payrollRepo.GetTemplate(ctx, employeeID)
	if err != nil {
		return payroll.TemplateResponse{}, err
	}
	return toTemplateResponse(tpl), nil
}

func (s *PayrollServiceImpl) UpsertTemplate(ctx context.Context, req payroll.UpsertTemplateRequest) (payroll.TemplateResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.TemplateResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return payroll.TemplateResponse{}, err
	}

	tpl := payroll.Template{
		EmployeeID:         req.EmployeeID,
		BasicSalary:        req.BasicSalary,
		HousingAllowance:   req.HousingAllowance,
		TransportAllowance: req.TransportAllowance,
		FoodAllowance:      req.FoodAllowance,
		PhoneAllowance:     req.PhoneAllowance,
		OtherAllowances:    req.OtherAllowances,
		IsActive:           true,
	}
	if req.OvertimeRate != nil {
		tpl.OvertimeRate = *req.OvertimeRate
	}
	tpl.HourlyRate = req.HourlyRate
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
	if req.EffectiveFrom != nil {
		from, err := time.Parse("2006-01-02", *req.EffectiveFrom)
		if err != nil {
			return payroll.TemplateResponse{}, fmt.Errorf("parse effective_from: %w", err)
		}
		tpl.EffectiveFrom = &from
	}

	saved, err := s.payrollRepo.UpsertTemplate(ctx, tpl)
	if err != nil {
		return payroll.TemplateResponse{}, err
	}

	return toTemplateResponse(saved), nil
}

// mergeComposed overlays freshly computed breakdown figures onto a
// stored entry, preserving identity, lifecycle and audit fields.
func mergeComposed(entry, composed payroll.Entry) payroll.Entry {
	composed.ID = entry.ID
	composed.Status = entry.Status
	composed.Notes = entry.Notes
	composed.PaymentDate = entry.PaymentDate
	composed.GeneratedBy = entry.GeneratedBy
	composed.GeneratedAt = entry.GeneratedAt
	composed.ApprovedBy = entry.ApprovedBy
	composed.ApprovedAt = entry.ApprovedAt
	composed.PaidBy = entry.PaidBy
	composed.PaidAt = entry.PaidAt
	composed.LastRecalcNetDiff = entry.LastRecalcNetDiff
	composed.LastRecalcAt = entry.LastRecalcAt
	composed.CreatedAt = entry.CreatedAt
	composed.EmployeeName = entry.EmployeeName
	composed.EmployeeCode = entry.EmployeeCode
	return composed
}

func toEntryResponse(e payroll.Entry) payroll.EntryResponse {
	resp := payroll.EntryResponse{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		EmployeeCode: e.EmployeeCode,
		Month:        e.Month,
		Year:         e.Year,
		PeriodStart:  e.PeriodStart.Format("2006-01-02"),
		PeriodEnd:    e.PeriodEnd.Format("2006-01-02"),

		Basic:              e.Basic,
		HousingAllowance:   e.HousingAllowance,
		TransportAllowance: e.TransportAllowance,
		FoodAllowance:      e.FoodAllowance,
		PhoneAllowance:     e.PhoneAllowance,
		OtherAllowances:    e.OtherAllowances,
		Allowances:         e.Allowances,

		Bonus:          e.Bonus,
		Commission:     e.Commission,
		OvertimeHours:  e.OvertimeHours,
		OvertimeAmount: e.OvertimeAmount,
		Incentives:     e.Incentives,

		AbsenceDays:          e.AbsenceDays,
		AbsenceDeduction:     e.AbsenceDeduction,
		LateMinutes:          e.LateMinutes,
		LateDeduction:        e.LateDeduction,
		LoanDeduction:        e.LoanDeduction,
		UnpaidLeaveDays:      e.UnpaidLeaveDays,
		UnpaidLeaveDeduction: e.UnpaidLeaveDeduction,
		OtherDeductions:      e.OtherDeductions,
		Deductions:           e.Deductions,

		Tax:             e.Tax,
		Insurance:       e.Insurance,
		HealthInsurance: e.HealthInsurance,

		GrossSalary:     e.GrossSalary,
		TotalDeductions: e.TotalDeductions,
		Net:             e.Net,

		Status: string(e.Status),
		Notes:  e.Notes,

		LastRecalcNetDiff: e.LastRecalcNetDiff,

		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
	if e.PaymentDate != nil {
		d := e.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &d
	}
	if e.LastRecalcAt != nil {
		t := e.LastRecalcAt.Format(time.RFC3339)
		resp.LastRecalcAt = &t
	}
	return resp
}

func toBatchResponse(b payroll.Batch) payroll.BatchResponse {
	return payroll.BatchResponse{
		ID:              b.ID,
		Month:           b.Month,
		Year:            b.Year,
		PeriodStart:     b.PeriodStart.Format("2006-01-02"),
		PeriodEnd:       b.PeriodEnd.Format("2006-01-02"),
		TotalEmployees:  b.TotalEmployees,
		TotalGross:      b.TotalGross,
		TotalDeductions: b.TotalDeductions,
		TotalNet:        b.TotalNet,
		Status:          string(b.Status),
		GeneratedAt:     b.GeneratedAt.Format(time.RFC3339),
		Notes:           b.Notes,
	}
}

func toTemplateResponse(t payroll.Template) payroll.TemplateResponse {
	resp := payroll.TemplateResponse{
		ID:                 t.ID,
		EmployeeID:         t.EmployeeID,
		BasicSalary:        t.BasicSalary,
		HousingAllowance:   t.HousingAllowance,
		TransportAllowance: t.TransportAllowance,
		FoodAllowance:      t.FoodAllowance,
		PhoneAllowance:     t.PhoneAllowance,
		OtherAllowances:    t.OtherAllowances,
		OvertimeRate:       t.OvertimeRate,
		HourlyRate:         t.HourlyRate,
		IsActive:           t.IsActive,
		CreatedAt:          t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          t.UpdatedAt.Format(time.RFC3339),
	}
	if t.EffectiveFrom != nil {
		d := t.EffectiveFrom.Format("2006-01-02")
		resp.EffectiveFrom = &d
	}
	return resp
}
