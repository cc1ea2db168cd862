package leave

import (
	"context"
	"time"
)

type LeaveRepository interface {
	// GetApprovedOverlapping returns approved leave records whose
	// [StartDate, EndDate] interval intersects [start, end].
	GetApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error)
}
