package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/attendance"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/leave"
	"github.com/nagnet2050/quick-sale-hr/internal/domain/schedule"
)

// Aggregator reconciles raw punch records against the work calendar:
// a working day without any record counts as absence, and a first
// check-in after the scheduled start accrues late minutes.
type Aggregator struct {
	attendanceRepo attendance.AttendanceRepository
	calendar       *schedule.WorkCalendar
}

func NewAggregator(attendanceRepo attendance.AttendanceRepository, calendar *schedule.WorkCalendar) *Aggregator {
	return &Aggregator{
		attendanceRepo: attendanceRepo,
		calendar:       calendar,
	}
}

// Aggregate walks every calendar date in [start, end] inclusive. Records
// are never mutated. Days carrying only a check-out punch are neither
// late nor absent.
func (a *Aggregator) Aggregate(ctx context.Context, employeeID string, start, end time.Time) (attendance.Totals, error) {
	records, err := a.attendanceRepo.GetByEmployeeAndRange(ctx, employeeID, start, end)
	if err != nil {
		return attendance.Totals{}, fmt.Errorf("get attendance records: %w", err)
	}

	byDate := make(map[time.Time][]attendance.Record)
	for _, r := range records {
		d := leave.Normalize(r.Date)
		byDate[d] = append(byDate[d], r)
	}

	var totals attendance.Totals
	for d := leave.Normalize(start); !d.After(leave.Normalize(end)); d = d.AddDate(0, 0, 1) {
		if !a.calendar.IsWorkingDay(d) {
			continue
		}
		totals.WorkingDays++

		dayRecords := byDate[d]
		if len(dayRecords) == 0 {
			totals.AbsenceDays++
			continue
		}

		earliest := earliestCheckIn(dayRecords)
		if earliest == nil {
			// Check-out-only day.
			continue
		}

		// Lateness is judged against the day the record belongs to; an
		// overnight punch timestamp can fall on a neighboring date.
		startOfDay := a.calendar.StartOfDay(d)
		if earliest.After(startOfDay) {
			totals.LateMinutes += int(earliest.Sub(startOfDay).Minutes())
		}
	}

	return totals, nil
}

func earliestCheckIn(records []attendance.Record) *time.Time {
	var earliest *time.Time
	for _, r := range records {
		if r.CheckInTime == nil {
			continue
		}
		if earliest == nil || r.CheckInTime.Before(*earliest) {
			earliest = r.CheckInTime
		}
	}
	return earliest
}
