// Package cashflow simulates a school's month-over-month cash position from
// a hand-authored 12-month revenue and expense schedule, then summarizes the
// result and derives rule-based recommendations. Everything here is pure
// computation over the supplied schedule; persistence lives with the caller.
package cashflow

import (
	"microschool-crm/internal/engine"
)

// monthNames fixes the calendar order used for wraparound and for the
// "last collection month" boundary check.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthIndex maps a month name to its 0-based calendar position.
func MonthIndex(name string) (int, error) {
	for i, m := range monthNames {
		if m == name {
			return i, nil
		}
	}
	return 0, &engine.ConfigurationError{Key: name, Reason: "unknown month name"}
}

// MonthRevenue is one month's revenue figure. TuitionCollected marks the
// months of the collection calendar (typically September through May);
// Summer marks months operating on reserves or summer-program revenue.
type MonthRevenue struct {
	Amount           float64 `json:"amount"`
	TuitionCollected bool    `json:"tuitionCollected"`
	Summer           bool    `json:"summer"`
}

// MonthExpenses splits a month's outflows into fixed and variable category
// maps. Category keys are free-form ("payroll", "rent", "insurance", ...).
type MonthExpenses struct {
	Fixed    map[string]float64 `json:"fixed"`
	Variable map[string]float64 `json:"variable"`
}

func (e MonthExpenses) total() float64 {
	var sum float64
	for _, v := range e.Fixed {
		sum += v
	}
	for _, v := range e.Variable {
		sum += v
	}
	return sum
}

// Schedule is the full 12-entry revenue and expense configuration, keyed by
// month name. It is read-only during a projection; a caller that backs it
// with the database must hand the projector a consistent snapshot.
type Schedule struct {
	Revenue  map[string]MonthRevenue  `json:"revenue"`
	Expenses map[string]MonthExpenses `json:"expenses"`
}

// Validate checks that every calendar month is present in both maps and
// that no unknown month keys snuck in.
func (s Schedule) Validate() error {
	for _, m := range monthNames {
		if _, ok := s.Revenue[m]; !ok {
			return &engine.ConfigurationError{Key: m, Reason: "missing revenue entry"}
		}
		if _, ok := s.Expenses[m]; !ok {
			return &engine.ConfigurationError{Key: m, Reason: "missing expense entry"}
		}
	}
	for k := range s.Revenue {
		if _, err := MonthIndex(k); err != nil {
			return err
		}
	}
	for k := range s.Expenses {
		if _, err := MonthIndex(k); err != nil {
			return err
		}
	}
	return nil
}

// isLastCollectionMonth reports whether the given month closes a run of
// tuition-collection months, i.e. it collects and the next calendar month
// does not. On a 9-month collection calendar this is May.
func (s Schedule) isLastCollectionMonth(idx int) bool {
	cur := s.Revenue[monthNames[idx]]
	next := s.Revenue[monthNames[(idx+1)%12]]
	return cur.TuitionCollected && !next.TuitionCollected
}

// Provider supplies the schedule a projection runs against. The production
// implementation reads the monthly budget table; tests use StaticProvider.
type Provider interface {
	Schedule() (Schedule, error)
}

// StaticProvider wraps a fixed in-memory schedule.
type StaticProvider struct {
	S Schedule
}

func (p StaticProvider) Schedule() (Schedule, error) {
	return p.S, nil
}
