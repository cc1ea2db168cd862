package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// GetByEmployeeAndRange returns all punch records for the employee with
	// a date inside [start, end], both inclusive.
	GetByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error)
}
