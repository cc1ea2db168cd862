package schedule

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWorkDays is a five-day Sunday-to-Thursday week, encoded as
	// weekday indices with 0=Sunday.
	DefaultWorkDays = "0,1,2,3,4"
	// DefaultWorkStart is the canonical start-of-day time.
	DefaultWorkStart = "08:00"
)

// WorkCalendar resolves which calendar dates are working days and what
// the official start-of-day time is. It is a pure value; invalid or
// missing configuration falls back to the defaults above.
type WorkCalendar struct {
	workDays    map[int]bool
	startHour   int
	startMinute int
}

// NewWorkCalendar parses a work-day set such as "0,1,2,3,4" (0=Sunday)
// and a start time such as "08:00".
func NewWorkCalendar(workDays, workStart string) *WorkCalendar {
	days := parseWorkDays(workDays)
	if len(days) == 0 {
		days = parseWorkDays(DefaultWorkDays)
	}

	hour, minute, ok := parseClock(workStart)
	if !ok {
		hour, minute, _ = parseClock(DefaultWorkStart)
	}

	return &WorkCalendar{workDays: days, startHour: hour, startMinute: minute}
}

// IsWorkingDay reports whether the date falls on a configured work day.
func (c *WorkCalendar) IsWorkingDay(d time.Time) bool {
	// time.Weekday already counts Sunday as 0.
	return c.workDays[int(d.Weekday())]
}

// StartOfDay returns the scheduled start-of-work instant on the given date,
// in the date's location.
func (c *WorkCalendar) StartOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.startHour, c.startMinute, 0, 0, d.Location())
}

func parseWorkDays(s string) map[int]bool {
	days := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days[n] = true
	}
	return days
}

func parseClock(s string) (hour, minute int, ok bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
