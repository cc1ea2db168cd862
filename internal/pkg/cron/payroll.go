package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/payroll"
)

// PayrollJobs generates the current month's payroll batch when enabled.
// The duplicate-batch check makes the job idempotent, so running it on
// an interval is safe.
type PayrollJobs struct {
	payrollService payroll.PayrollService
}

func NewPayrollJobs(payrollService payroll.PayrollService) *PayrollJobs {
	return &PayrollJobs{payrollService: payrollService}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_generate_payroll_batch", 6*time.Hour, j.AutoGenerateBatch)
}

func (j *PayrollJobs) AutoGenerateBatch(ctx context.Context) error {
	now := time.Now().UTC()
	notes := "auto-generated"

	_, err := j.payrollService.GenerateBatch(ctx, payroll.GenerateBatchRequest{
		Month: int(now.Month()),
		Year:  now.Year(),
		Notes: &notes,
	})
	if err != nil {
		if errors.Is(err, payroll.ErrDuplicateBatch) {
			slog.Debug("Cron: payroll batch already generated", "year", now.Year(), "month", int(now.Month()))
			return nil
		}
		if errors.Is(err, payroll.ErrNoTemplates) {
			slog.Info("Cron: no active employees to run payroll for")
			return nil
		}
		return fmt.Errorf("auto-generate payroll batch: %w", err)
	}

	slog.Info("Cron: payroll batch generated", "year", now.Year(), "month", int(now.Month()))
	return nil
}
