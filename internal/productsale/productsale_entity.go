// Package productsale records the commissions employees earn on retail
// product sales and sums them per month for the payouts console.
package productsale

import (
	"sort"
	"time"

	"go-payouts/internal/period"
	"go-payouts/internal/shared/jsonx"

	"github.com/shopspring/decimal"
)

const untitledProduct = "Untitled"

type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Sale is one commission: Percent of the product's Price, paid to EmployeeID.
type Sale struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	Percent      decimal.Decimal `json:"percent"`
	Price        decimal.Decimal `json:"price"`
	Payout       decimal.Decimal `json:"payout"`
	CreatedAt    time.Time       `json:"created_at"`
}

// In reports whether the sale was made in p, on the business calendar.
// Sales without a timestamp belong to no month.
func (s Sale) In(p period.Period) bool {
	if s.CreatedAt.IsZero() {
		return false
	}
	return p.Contains(period.ToCalendarDate(s.CreatedAt))
}

// Commission is price*percent/100 rounded half away from zero.
func Commission(price, percent decimal.Decimal) decimal.Decimal {
	return price.Mul(percent).Div(decimal.NewFromInt(100)).Round(0)
}

// ClampPercent reads an operator-typed percent and bounds it to [0, 100].
// Unreadable input is 0.
func ClampPercent(raw string) decimal.Decimal {
	d, ok := jsonx.ParseDecimal(raw)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	if hundred := decimal.NewFromInt(100); d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

// MonthTotals sums the payouts of the sales made in p per employee, rounded
// to whole units once per employee.
func MonthTotals(sales []Sale, p period.Period) map[string]int64 {
	sums := make(map[string]decimal.Decimal)
	for _, s := range sales {
		if s.EmployeeID == "" || !s.In(p) {
			continue
		}
		sums[s.EmployeeID] = sums[s.EmployeeID].Add(s.Payout)
	}

	out := make(map[string]int64, len(sums))
	for id, sum := range sums {
		out[id] = sum.Round(0).IntPart()
	}
	return out
}

// Filter keeps the sales of p, of employeeID when it is set, newest first.
func Filter(sales []Sale, p period.Period, employeeID string) []Sale {
	out := make([]Sale, 0)
	for _, s := range sales {
		if !s.In(p) {
			continue
		}
		if employeeID != "" && s.EmployeeID != employeeID {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
