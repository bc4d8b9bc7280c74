// Package report renders payout documents: the period PDF and spreadsheet,
// and the plain-text range report.
package report

import (
	"time"

	"go-payouts/internal/payoutrate"
	"go-payouts/internal/period"

	"github.com/shopspring/decimal"
)

// Document is the data every period export renders.
type Document struct {
	Period      period.Period
	Rows        []payoutrate.PayoutRow
	Total       int64
	GeneratedAt time.Time
}

func NewDocument(p period.Period, rows []payoutrate.PayoutRow, now time.Time) Document {
	return Document{
		Period:      p,
		Rows:        rows,
		Total:       payoutrate.Total(rows),
		GeneratedAt: now,
	}
}

// Totals sums completed count and revenue over the rows.
func (d Document) Totals() (completed int, revenue decimal.Decimal) {
	for _, r := range d.Rows {
		completed += r.Completed
		revenue = revenue.Add(r.Revenue)
	}
	return completed, revenue
}

func money(d decimal.Decimal) string {
	return d.Round(0).String()
}
