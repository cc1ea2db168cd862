package leave

import "time"

type LeaveType string

const (
	LeaveTypeAnnual   LeaveType = "annual"
	LeaveTypeWeekly   LeaveType = "weekly"
	LeaveTypeHolidays LeaveType = "holidays"
	LeaveTypeCasual   LeaveType = "casual"
	LeaveTypeSick     LeaveType = "sick"
	LeaveTypeUnpaid   LeaveType = "unpaid"
	LeaveTypePaid     LeaveType = "paid"
)

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "Pending"
	LeaveStatusApproved LeaveStatus = "Approved"
	LeaveStatusRejected LeaveStatus = "Rejected"
)

// Record is an approved or pending leave span, end date inclusive.
// PaidDays is only meaningful for sick leave: it holds how many days of
// the span are payable under the employee's remaining yearly cap, stamped
// by the leave module at approval time.
type Record struct {
	ID          string
	EmployeeID  string
	Type        LeaveType
	StartDate   time.Time
	EndDate     time.Time
	Paid        bool
	PaidDays    *int
	Reason      *string
	Status      LeaveStatus
	RequestedAt time.Time
	ApprovedBy  *string
	ApprovedAt  *time.Time
}

// DateSet is a set of calendar dates normalized to midnight UTC.
type DateSet map[time.Time]struct{}

func (s DateSet) Add(d time.Time) {
	s[Normalize(d)] = struct{}{}
}

func (s DateSet) Remove(d time.Time) {
	delete(s, Normalize(d))
}

func (s DateSet) Has(d time.Time) bool {
	_, ok := s[Normalize(d)]
	return ok
}

func (s DateSet) Len() int {
	return len(s)
}

// Normalize strips the time-of-day and location from a date.
func Normalize(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
