package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/leave"
)

// Partitioner expands approved leave spans into individual dates and
// classifies each as paid or unpaid.
type Partitioner struct {
	leaveRepo leave.LeaveRepository
}

func NewPartitioner(leaveRepo leave.LeaveRepository) *Partitioner {
	return &Partitioner{leaveRepo: leaveRepo}
}

// Partition clips each approved leave record to [start, end] and
// enumerates its dates. Sick leave carrying a PaidDays value has its
// first PaidDays dates paid, in chronological order within that record,
// and the remainder unpaid; every other type follows the record's paid
// flag wholesale. When two records cover the same date the
// later-processed record's classification wins; repository ordering is
// the only tie-break.
func (p *Partitioner) Partition(ctx context.Context, employeeID string, start, end time.Time) (paid, unpaid leave.DateSet, err error) {
	records, err := p.leaveRepo.GetApprovedOverlapping(ctx, employeeID, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("get approved leave: %w", err)
	}

	paid = make(leave.DateSet)
	unpaid = make(leave.DateSet)

	periodStart := leave.Normalize(start)
	periodEnd := leave.Normalize(end)

	for _, rec := range records {
		from := leave.Normalize(rec.StartDate)
		if from.Before(periodStart) {
			from = periodStart
		}
		to := leave.Normalize(rec.EndDate)
		if to.After(periodEnd) {
			to = periodEnd
		}
		if from.After(to) {
			continue
		}

		dates := enumerate(from, to)

		if rec.Type == leave.LeaveTypeSick && rec.PaidDays != nil {
			paidCount := *rec.PaidDays
			if paidCount < 0 {
				paidCount = 0
			}
			if paidCount > len(dates) {
				paidCount = len(dates)
			}
			for i, d := range dates {
				if i < paidCount {
					classify(paid, unpaid, d)
				} else {
					classify(unpaid, paid, d)
				}
			}
			continue
		}

		for _, d := range dates {
			if rec.Paid {
				classify(paid, unpaid, d)
			} else {
				classify(unpaid, paid, d)
			}
		}
	}

	return paid, unpaid, nil
}

// classify moves d into the winning set, evicting any earlier
// classification so the sets stay disjoint.
func classify(winner, loser leave.DateSet, d time.Time) {
	loser.Remove(d)
	winner.Add(d)
}

func enumerate(from, to time.Time) []time.Time {
	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
