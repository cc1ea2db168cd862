package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/leave"
	"github.com/nagnet2050/quick-sale-hr/internal/pkg/database"
)

type leaveRepository struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepository{db: db}
}

func (r *leaveRepository) GetApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]leave.Record, error) {
	q := GetQuerier(ctx, r.db)

	// Ordered by start date so date-collision resolution between
	// overlapping spans stays deterministic per fetch.
	query := `
		SELECT id, employee_id, type, start_date, end_date, paid, paid_days,
			   reason, status, requested_at, approved_by, approved_at
		FROM leave_records
		WHERE employee_id = $1
		  AND status = 'Approved'
		  AND start_date <= $3
		  AND end_date >= $2
		ORDER BY start_date, id
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved leave: %w", err)
	}
	defer rows.Close()

	var records []leave.Record
	for rows.Next() {
		var rec leave.Record
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.Type, &rec.StartDate, &rec.EndDate,
			&rec.Paid, &rec.PaidDays, &rec.Reason, &rec.Status,
			&rec.RequestedAt, &rec.ApprovedBy, &rec.ApprovedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
