package payoutrate

import (
	"go-payouts/internal/period"

	"github.com/shopspring/decimal"
)

// Record is one server-side rate row: one per employee, period and mode.
// ID is empty until the record is first created.
type Record struct {
	ID         string
	EmployeeID string
	Period     period.Period
	Mode       Mode
	Rate       int64
}

// Slot is the server state of one mode for one employee.
type Slot struct {
	ID    string `json:"id,omitempty"`
	Value Value  `json:"value"`
}

// EmployeeRates is everything the backend reports for one employee in a
// period. Completed, Revenue and Payout are the backend's own figures and
// are informational only.
type EmployeeRates struct {
	EmployeeID string
	Record     Slot
	Fixed      Slot
	Percent    Slot
	Completed  int
	Revenue    decimal.Decimal
	Payout     decimal.Decimal
}

func (r EmployeeRates) Slot(m Mode) Slot {
	switch m {
	case ModeRecord:
		return r.Record
	case ModeFixed:
		return r.Fixed
	case ModePercent:
		return r.Percent
	}
	return Slot{}
}

func (r *EmployeeRates) setSlot(m Mode, s Slot) {
	switch m {
	case ModeRecord:
		r.Record = s
	case ModeFixed:
		r.Fixed = s
	case ModePercent:
		r.Percent = s
	}
}

// PeriodRates holds the server rates of a period keyed by employee id.
type PeriodRates map[string]EmployeeRates

// Rates are resolved numbers ready for the payout formula.
type Rates struct {
	PerRecord int64 `json:"per_record"`
	Fixed     int64 `json:"fixed"`
	Percent   int64 `json:"percent"`
}

// PercentPart is round(revenue * percent / 100), half away from zero.
func (r Rates) PercentPart(revenue decimal.Decimal) int64 {
	return revenue.Mul(decimal.NewFromInt(r.Percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// Variable is the part of a payout that depends on work done:
// completed * perRecord + round(revenue * percent / 100).
func (r Rates) Variable(completed int, revenue decimal.Decimal) int64 {
	return int64(completed)*r.PerRecord + r.PercentPart(revenue)
}

// Total is the payout formula of a row.
func (r Rates) Total(completed int, revenue decimal.Decimal) int64 {
	return r.Variable(completed, revenue) + r.Fixed
}
