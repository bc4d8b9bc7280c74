package appointment

import (
	"sort"

	"go-payouts/internal/period"

	"github.com/shopspring/decimal"
)

// Stats is the completed count and revenue of one employee over some span.
type Stats struct {
	Completed int             `json:"completed"`
	Revenue   decimal.Decimal `json:"revenue"`
}

func (s Stats) add(amount decimal.Decimal) Stats {
	return Stats{Completed: s.Completed + 1, Revenue: s.Revenue.Add(amount)}
}

func (s Stats) IsZero() bool {
	return s.Completed == 0 && s.Revenue.IsZero()
}

type DayStats struct {
	Date period.Date `json:"date"`
	Stats
}

// Aggregates is the read-only result of Aggregate. Accessors return copies;
// unknown employees read as zero.
type Aggregates struct {
	byEmployee map[string]Stats
	byDay      map[string]map[period.Date]Stats
}

// Aggregate reduces appointments to per-employee and per-employee-per-day
// stats for the period p. Only completed appointments whose shop-local start
// falls in p count. Items without an employee reference or a readable start
// are skipped; unreadable prices count as zero.
func Aggregate(apps []Appointment, p period.Period) Aggregates {
	return aggregate(apps, p.Contains)
}

// AggregateRange is Aggregate over the inclusive span [from, to].
func AggregateRange(apps []Appointment, from, to period.Date) Aggregates {
	return aggregate(apps, func(d period.Date) bool {
		return !d.Before(from) && !to.Before(d)
	})
}

func aggregate(apps []Appointment, keep func(period.Date) bool) Aggregates {
	agg := Aggregates{
		byEmployee: make(map[string]Stats),
		byDay:      make(map[string]map[period.Date]Stats),
	}

	for _, a := range apps {
		if !a.IsCompleted() {
			continue
		}
		day, ok := a.Day()
		if !ok || !keep(day) {
			continue
		}
		emp := a.EmployeeRef()
		if emp == "" {
			continue
		}

		amount := a.Amount()
		agg.byEmployee[emp] = agg.byEmployee[emp].add(amount)

		days, ok := agg.byDay[emp]
		if !ok {
			days = make(map[period.Date]Stats)
			agg.byDay[emp] = days
		}
		days[day] = days[day].add(amount)
	}

	return agg
}

func (a Aggregates) For(employeeID string) Stats {
	return a.byEmployee[employeeID]
}

// Days returns the employee's day buckets in chronological order.
func (a Aggregates) Days(employeeID string) []DayStats {
	days := a.byDay[employeeID]
	out := make([]DayStats, 0, len(days))
	for d, s := range days {
		out = append(out, DayStats{Date: d, Stats: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Employees lists every employee id with at least one counted appointment.
func (a Aggregates) Employees() []string {
	ids := make([]string, 0, len(a.byEmployee))
	for id := range a.byEmployee {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a Aggregates) Total() Stats {
	var total Stats
	for _, s := range a.byEmployee {
		total.Completed += s.Completed
		total.Revenue = total.Revenue.Add(s.Revenue)
	}
	return total
}
