package payoutrate

import (
	"go-payouts/internal/appointment"
	"go-payouts/internal/employee"

	"github.com/shopspring/decimal"
)

// PayoutRow is the derived view of one employee in a period. Product is the
// month's product sale commission and is not part of Total.
type PayoutRow struct {
	EmployeeID    string          `json:"employee_id"`
	Name          string          `json:"name"`
	Completed     int             `json:"completed"`
	Revenue       decimal.Decimal `json:"revenue"`
	PerRecordRate int64           `json:"per_record_rate"`
	FixedRate     int64           `json:"fixed_rate"`
	PercentRate   int64           `json:"percent_rate"`
	Total         int64           `json:"total"`
	Product       int64           `json:"product"`
	Edited        bool            `json:"edited"`
}

func (r PayoutRow) Rates() Rates {
	return Rates{PerRecord: r.PerRecordRate, Fixed: r.FixedRate, Percent: r.PercentRate}
}

// BuildPayoutRows assembles one row per directory employee, in directory
// order. Employees without appointments get zero stats.
func BuildPayoutRows(employees []employee.Employee, store *Store, agg appointment.Aggregates) []PayoutRow {
	rows := make([]PayoutRow, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, BuildPayoutRow(e, store, agg))
	}
	return rows
}

func BuildPayoutRow(e employee.Employee, store *Store, agg appointment.Aggregates) PayoutRow {
	stats := agg.For(e.ID)
	rates := store.Rates(e.ID)
	return PayoutRow{
		EmployeeID:    e.ID,
		Name:          e.Name,
		Completed:     stats.Completed,
		Revenue:       stats.Revenue,
		PerRecordRate: rates.PerRecord,
		FixedRate:     rates.Fixed,
		PercentRate:   rates.Percent,
		Total:         rates.Total(stats.Completed, stats.Revenue),
		Edited:        store.HasDrafts(e.ID),
	}
}

// Total is the payout fund of rows.
func Total(rows []PayoutRow) int64 {
	var sum int64
	for _, r := range rows {
		sum += r.Total
	}
	return sum
}
