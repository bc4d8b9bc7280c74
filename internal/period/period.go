// Package period converts backend timestamps to the shop's calendar.
//
// Every timestamp is shifted by Offset before its calendar fields are read,
// so month and day boundaries fall on the shop's local midnight (UTC+6)
// rather than UTC midnight. The offset is a constant on purpose: the
// aggregation and every screen that shows dates must agree on it.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const Offset = 6 * time.Hour

var ErrInvalidPeriod = errors.New("invalid period, expected YYYY-MM")

// Date is a calendar day in shop-local time.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d Date) Period() Period {
	return Period{Year: d.Year, Month: d.Month}
}

// Before orders dates chronologically.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Time returns shop-local midnight of d expressed in UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Add(-Offset)
}

// AddDays moves d by n calendar days.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func ToCalendarDate(t time.Time) Date {
	local := t.UTC().Add(Offset)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// ParseDate reads "YYYY-MM-DD" as a calendar day without any shift.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes seen in start_at fields.
// Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Period is a calendar month, the unit of payroll computation.
type Period struct {
	Year  int
	Month time.Month
}

func Key(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func New(year int, month time.Month) (Period, error) {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Year: year, Month: month}, nil
}

func Parse(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func (p Period) String() string {
	return Key(p.Year, p.Month)
}

// FirstDay is the "YYYY-MM-01" date used on ledger entries.
func (p Period) FirstDay() string {
	return p.String() + "-01"
}

func (p Period) Contains(d Date) bool {
	return d.Year == p.Year && d.Month == p.Month
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p Period) IsZero() bool {
	return p.Year == 0
}
