package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/payroll"
	"github.com/nagnet2050/quick-sale-hr/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== ENTRIES ==========

const entryColumns = `p.id, p.employee_id, p.month, p.year, p.period_start, p.period_end,
	p.basic_salary, p.housing_allowance, p.transport_allowance, p.food_allowance,
	p.phone_allowance, p.other_allowances, p.allowances,
	p.bonus, p.commission, p.overtime_hours, p.overtime_amount, p.incentives,
	p.absence_days, p.absence_deduction, p.late_minutes, p.late_deduction,
	p.loan_deduction, p.unpaid_leave_days, p.unpaid_leave_deduction,
	p.other_deductions, p.deductions,
	p.tax, p.insurance, p.health_insurance,
	p.gross_salary, p.total_deductions, p.net_salary,
	p.status, p.payment_date, p.notes,
	p.generated_by, p.generated_at, p.approved_by, p.approved_at, p.paid_by, p.paid_at,
	p.last_recalc_net_diff, p.last_recalc_at,
	p.created_at, p.updated_at,
	e.full_name, e.code`

func scanEntryTargets(e *payroll.Entry) []interface{} {
	return []interface{}{
		&e.ID, &e.EmployeeID, &e.Month, &e.Year, &e.PeriodStart, &e.PeriodEnd,
		&e.Basic, &e.HousingAllowance, &e.TransportAllowance, &e.FoodAllowance,
		&e.PhoneAllowance, &e.OtherAllowances, &e.Allowances,
		&e.Bonus, &e.Commission, &e.OvertimeHours, &e.OvertimeAmount, &e.Incentives,
		&e.AbsenceDays, &e.AbsenceDeduction, &e.LateMinutes, &e.LateDeduction,
		&e.LoanDeduction, &e.UnpaidLeaveDays, &e.UnpaidLeaveDeduction,
		&e.OtherDeductions, &e.Deductions,
		&e.Tax, &e.Insurance, &e.HealthInsurance,
		&e.GrossSalary, &e.TotalDeductions, &e.Net,
		&e.Status, &e.PaymentDate, &e.Notes,
		&e.GeneratedBy, &e.GeneratedAt, &e.ApprovedBy, &e.ApprovedAt, &e.PaidBy, &e.PaidAt,
		&e.LastRecalcNetDiff, &e.LastRecalcAt,
		&e.CreatedAt, &e.UpdatedAt,
		&e.EmployeeName, &e.EmployeeCode,
	}
}

func (r *payrollRepository) CreateEntry(ctx context.Context, e payroll.Entry) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	query := `
		INSERT INTO payroll_entries (
			id, employee_id, month, year, period_start, period_end,
			basic_salary, housing_allowance, transport_allowance, food_allowance,
			phone_allowance, other_allowances, allowances,
			bonus, commission, overtime_hours, overtime_amount, incentives,
			absence_days, absence_deduction, late_minutes, late_deduction,
			loan_deduction, unpaid_leave_days, unpaid_leave_deduction,
			other_deductions, deductions,
			tax, insurance, health_insurance,
			gross_salary, total_deductions, net_salary,
			status, notes, generated_by, generated_at, last_recalc_net_diff
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37, $38
		)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		e.ID, e.EmployeeID, e.Month, e.Year, e.PeriodStart, e.PeriodEnd,
		e.Basic, e.HousingAllowance, e.TransportAllowance, e.FoodAllowance,
		e.PhoneAllowance, e.OtherAllowances, e.Allowances,
		e.Bonus, e.Commission, e.OvertimeHours, e.OvertimeAmount, e.Incentives,
		e.AbsenceDays, e.AbsenceDeduction, e.LateMinutes, e.LateDeduction,
		e.LoanDeduction, e.UnpaidLeaveDays, e.UnpaidLeaveDeduction,
		e.OtherDeductions, e.Deductions,
		e.Tax, e.Insurance, e.HealthInsurance,
		e.GrossSalary, e.TotalDeductions, e.Net,
		e.Status, e.Notes, e.GeneratedBy, e.GeneratedAt, e.LastRecalcNetDiff,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		// Partial unique index over non-cancelled (employee_id, year, month).
		if strings.Contains(err.Error(), "uk_payroll_entry_period") {
			return payroll.Entry{}, payroll.ErrEntryExists
		}
		return payroll.Entry{}, fmt.Errorf("failed to create payroll entry: %w", err)
	}

	return e, nil
}

func (r *payrollRepository) GetEntryByID(ctx context.Context, id string) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + entryColumns + `
		FROM payroll_entries p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1
	`

	var e payroll.Entry
	err := q.QueryRow(ctx, query, id).Scan(scanEntryTargets(&e)...)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Entry{}, payroll.ErrEntryNotFound
		}
		return payroll.Entry{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}

	return e, nil
}

func (r *payrollRepository) GetEntryByEmployeePeriod(ctx context.Context, employeeID string, year, month int) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + entryColumns + `
		FROM payroll_entries p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE p.employee_id = $1 AND p.year = $2 AND p.month = $3 AND p.status != 'cancelled'
	`

	var e payroll.Entry
	err := q.QueryRow(ctx, query, employeeID, year, month).Scan(scanEntryTargets(&e)...)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Entry{}, payroll.ErrEntryNotFound
		}
		return payroll.Entry{}, fmt.Errorf("failed to get payroll entry by period: %w", err)
	}

	return e, nil
}

func (r *payrollRepository) CountForPeriod(ctx context.Context, year, month int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*) FROM payroll_entries
		WHERE year = $1 AND month = $2 AND status != 'cancelled'
	`

	var count int
	if err := q.QueryRow(ctx, query, year, month).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payroll entries: %w", err)
	}

	return count, nil
}

func (r *payrollRepository) ListEntries(ctx context.Context, filter payroll.EntryFilter) ([]payroll.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("p.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("p.year = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Month != nil {
		conditions = append(conditions, fmt.Sprintf("p.month = $%d", argIdx))
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM payroll_entries p WHERE ` + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll entries: %w", err)
	}

	orderBy := map[string]string{
		"period":     "p.year, p.month",
		"net_salary": "p.net_salary",
		"status":     "p.status",
		"created_at": "p.created_at",
	}[filter.SortBy]
	if orderBy == "" {
		orderBy = "p.year, p.month"
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payroll_entries p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE %s
		ORDER BY %s %s, p.id
		LIMIT $%d OFFSET $%d
	`, entryColumns, where, orderBy, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	defer rows.Close()

	var entries []payroll.Entry
	for rows.Next() {
		var e payroll.Entry
		if err := rows.Scan(scanEntryTargets(&e)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}

func (r *payrollRepository) ListEntriesForPeriod(ctx context.Context, year, month int) ([]payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + entryColumns + `
		FROM payroll_entries p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE p.year = $1 AND p.month = $2 AND p.status != 'cancelled'
		ORDER BY p.id
	`

	rows, err := q.Query(ctx, query, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list period payroll entries: %w", err)
	}
	defer rows.Close()

	var entries []payroll.Entry
	for rows.Next() {
		var e payroll.Entry
		if err := rows.Scan(scanEntryTargets(&e)...); err != nil {
			return nil, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *payrollRepository) UpdateEntry(ctx context.Context, e payroll.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_entries SET
			basic_salary = $2, housing_allowance = $3, transport_allowance = $4,
			food_allowance = $5, phone_allowance = $6, other_allowances = $7,
			allowances = $8, bonus = $9, commission = $10, overtime_hours = $11,
			overtime_amount = $12, incentives = $13,
			absence_days = $14, absence_deduction = $15, late_minutes = $16,
			late_deduction = $17, loan_deduction = $18, unpaid_leave_days = $19,
			unpaid_leave_deduction = $20, other_deductions = $21, deductions = $22,
			tax = $23, insurance = $24, health_insurance = $25,
			gross_salary = $26, total_deductions = $27, net_salary = $28,
			status = $29, payment_date = $30, notes = $31,
			approved_by = $32, approved_at = $33, paid_by = $34, paid_at = $35,
			last_recalc_net_diff = $36, last_recalc_at = $37,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		e.ID,
		e.Basic, e.HousingAllowance, e.TransportAllowance,
		e.FoodAllowance, e.PhoneAllowance, e.OtherAllowances,
		e.Allowances, e.Bonus, e.Commission, e.OvertimeHours,
		e.OvertimeAmount, e.Incentives,
		e.AbsenceDays, e.AbsenceDeduction, e.LateMinutes,
		e.LateDeduction, e.LoanDeduction, e.UnpaidLeaveDays,
		e.UnpaidLeaveDeduction, e.OtherDeductions, e.Deductions,
		e.Tax, e.Insurance, e.HealthInsurance,
		e.GrossSalary, e.TotalDeductions, e.Net,
		e.Status, e.PaymentDate, e.Notes,
		e.ApprovedBy, e.ApprovedAt, e.PaidBy, e.PaidAt,
		e.LastRecalcNetDiff, e.LastRecalcAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrEntryNotFound
	}

	return nil
}

func (r *payrollRepository) DeleteEntry(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrEntryNotFound
	}

	return nil
}

// ========== BATCHES ==========

func (r *payrollRepository) CreateBatch(ctx context.Context, b payroll.Batch) (payroll.Batch, error) {
	q := GetQuerier(ctx, r.db)

	if b.ID == "" {
		b.ID = uuid.New().String()
	}

	query := `
		INSERT INTO payroll_batches (
			id, month, year, period_start, period_end,
			total_employees, total_gross, total_deductions, total_net,
			status, generated_by, generated_at, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		b.ID, b.Month, b.Year, b.PeriodStart, b.PeriodEnd,
		b.TotalEmployees, b.TotalGross, b.TotalDeductions, b.TotalNet,
		b.Status, b.GeneratedBy, b.GeneratedAt, b.Notes,
	).Scan(&b.ID)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_batch_period") {
			return payroll.Batch{}, payroll.ErrDuplicateBatch
		}
		return payroll.Batch{}, fmt.Errorf("failed to create payroll batch: %w", err)
	}

	return b, nil
}

func (r *payrollRepository) GetBatchByPeriod(ctx context.Context, year, month int) (payroll.Batch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, month, year, period_start, period_end,
			   total_employees, total_gross, total_deductions, total_net,
			   status, generated_by, generated_at, notes
		FROM payroll_batches
		WHERE year = $1 AND month = $2 AND status != 'cancelled'
	`

	var b payroll.Batch
	err := q.QueryRow(ctx, query, year, month).Scan(
		&b.ID, &b.Month, &b.Year, &b.PeriodStart, &b.PeriodEnd,
		&b.TotalEmployees, &b.TotalGross, &b.TotalDeductions, &b.TotalNet,
		&b.Status, &b.GeneratedBy, &b.GeneratedAt, &b.Notes,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Batch{}, payroll.ErrBatchNotFound
		}
		return payroll.Batch{}, fmt.Errorf("failed to get payroll batch: %w", err)
	}

	return b, nil
}

// ========== SUMMARY ==========

func (r *payrollRepository) GetSummary(ctx context.Context, year, month int) (payroll.SummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*),
			   COALESCE(SUM(gross_salary), 0),
			   COALESCE(SUM(total_deductions), 0),
			   COALESCE(SUM(net_salary), 0),
			   COUNT(*) FILTER (WHERE status = 'pending'),
			   COUNT(*) FILTER (WHERE status = 'approved'),
			   COUNT(*) FILTER (WHERE status = 'paid')
		FROM payroll_entries
		WHERE year = $1 AND month = $2 AND status != 'cancelled'
	`

	summary := payroll.SummaryResponse{Year: year, Month: month}
	var pending, approved, paid int
	err := q.QueryRow(ctx, query, year, month).Scan(
		&summary.TotalEmployees,
		&summary.TotalGross, &summary.TotalDeductions, &summary.TotalNet,
		&pending, &approved, &paid,
	)
	if err != nil {
		return payroll.SummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	summary.ByStatus = map[string]int{
		string(payroll.EntryStatusPending):  pending,
		string(payroll.EntryStatusApproved): approved,
		string(payroll.EntryStatusPaid):     paid,
	}

	return summary, nil
}

// ========== TEMPLATES ==========

const templateColumns = `id, employee_id, basic_salary, housing_allowance, transport_allowance,
	food_allowance, phone_allowance, other_allowances, overtime_rate, hourly_rate,
	is_active, effective_from, created_at, updated_at`

func scanTemplateTargets(t *payroll.Template) []interface{} {
	return []interface{}{
		&t.ID, &t.EmployeeID, &t.BasicSalary, &t.HousingAllowance, &t.TransportAllowance,
		&t.FoodAllowance, &t.PhoneAllowance, &t.OtherAllowances, &t.OvertimeRate, &t.HourlyRate,
		&t.IsActive, &t.EffectiveFrom, &t.CreatedAt, &t.UpdatedAt,
	}
}

func (r *payrollRepository) GetTemplate(ctx context.Context, employeeID string) (payroll.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + templateColumns + ` FROM payroll_templates WHERE employee_id = $1`

	var t payroll.Template
	err := q.QueryRow(ctx, query, employeeID).Scan(scanTemplateTargets(&t)...)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Template{}, payroll.ErrTemplateNotFound
		}
		return payroll.Template{}, fmt.Errorf("failed to get payroll template: %w", err)
	}

	return t, nil
}

func (r *payrollRepository) UpsertTemplate(ctx context.Context, t payroll.Template) (payroll.Template, error) {
	q := GetQuerier(ctx, r.db)

	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	query := `
		INSERT INTO payroll_templates (
			id, employee_id, basic_salary, housing_allowance, transport_allowance,
			food_allowance, phone_allowance, other_allowances, overtime_rate,
			hourly_rate, is_active, effective_from
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (employee_id) DO UPDATE SET
			basic_salary = EXCLUDED.basic_salary,
			housing_allowance = EXCLUDED.housing_allowance,
			transport_allowance = EXCLUDED.transport_allowance,
			food_allowance = EXCLUDED.food_allowance,
			phone_allowance = EXCLUDED.phone_allowance,
			other_allowances = EXCLUDED.other_allowances,
			overtime_rate = EXCLUDED.overtime_rate,
			hourly_rate = EXCLUDED.hourly_rate,
			is_active = EXCLUDED.is_active,
			effective_from = EXCLUDED.effective_from,
			updated_at = NOW()
		RETURNING ` + templateColumns

	var saved payroll.Template
	err := q.QueryRow(ctx, query,
		t.ID, t.EmployeeID, t.BasicSalary, t.HousingAllowance, t.TransportAllowance,
		t.FoodAllowance, t.PhoneAllowance, t.OtherAllowances, t.OvertimeRate,
		t.HourlyRate, t.IsActive, t.EffectiveFrom,
	).Scan(scanTemplateTargets(&saved)...)
	if err != nil {
		return payroll.Template{}, fmt.Errorf("failed to upsert payroll template: %w", err)
	}

	return saved, nil
}

func (r *payrollRepository) ListActiveTemplates(ctx context.Context) ([]payroll.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + templateColumns + ` FROM payroll_templates WHERE is_active = true ORDER BY employee_id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active payroll templates: %w", err)
	}
	defer rows.Close()

	var templates []payroll.Template
	for rows.Next() {
		var t payroll.Template
		if err := rows.Scan(scanTemplateTargets(&t)...); err != nil {
			return nil, fmt.Errorf("failed to scan payroll template: %w", err)
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}
