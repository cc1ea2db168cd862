package attendance

import "time"

// Record is a raw punch captured by the attendance subsystem. Several
// records may exist for one employee on one date; the aggregator uses
// the earliest check-in of the day. Immutable from the payroll core.
type Record struct {
	ID           string
	EmployeeID   string
	Date         time.Time
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Status       *string
	CreatedAt    time.Time
}

// Totals is the per-period reconciliation result. WorkingDays is the
// number of working days visited and prices the daily rate downstream.
type Totals struct {
	AbsenceDays int
	LateMinutes int
	WorkingDays int
}
