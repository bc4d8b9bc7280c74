package productsale_test

import (
	"testing"
	"time"

	"go-payouts/internal/period"
	"go-payouts/internal/productsale"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var march = period.Period{Year: 2025, Month: time.March}

func at(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func TestMonthTotals(t *testing.T) {
	sales := []productsale.Sale{
		{EmployeeID: "A", Payout: decimal.RequireFromString("100.4"), CreatedAt: at("2025-03-02T10:00:00Z")},
		{EmployeeID: "A", Payout: decimal.RequireFromString("50.2"), CreatedAt: at("2025-03-15T10:00:00Z")},
		{EmployeeID: "B", Payout: decimal.NewFromInt(70), CreatedAt: at("2025-03-10T10:00:00Z")},
		// 20:00 UTC on the 31st is already April on the business calendar.
		{EmployeeID: "B", Payout: decimal.NewFromInt(999), CreatedAt: at("2025-03-31T20:00:00Z")},
		{EmployeeID: "C", Payout: decimal.NewFromInt(10)},
		{EmployeeID: "", Payout: decimal.NewFromInt(10), CreatedAt: at("2025-03-10T10:00:00Z")},
	}

	totals := productsale.MonthTotals(sales, march)

	assert.Equal(t, map[string]int64{"A": 151, "B": 70}, totals)
}

func TestFilter(t *testing.T) {
	sales := []productsale.Sale{
		{ID: "1", EmployeeID: "A", CreatedAt: at("2025-03-02T10:00:00Z")},
		{ID: "2", EmployeeID: "B", CreatedAt: at("2025-03-05T10:00:00Z")},
		{ID: "3", EmployeeID: "A", CreatedAt: at("2025-03-09T10:00:00Z")},
		{ID: "4", EmployeeID: "A", CreatedAt: at("2025-02-09T10:00:00Z")},
	}

	all := productsale.Filter(sales, march, "")
	onlyA := productsale.Filter(sales, march, "A")
	none := productsale.Filter(sales, march, "Z")

	assert.Len(t, all, 3)
	if assert.Len(t, onlyA, 2) {
		assert.Equal(t, "3", onlyA[0].ID)
		assert.Equal(t, "1", onlyA[1].ID)
	}
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCommission(t *testing.T) {
	assert.Equal(t, "150", productsale.Commission(decimal.NewFromInt(1500), decimal.NewFromInt(10)).String())
	assert.Equal(t, "38", productsale.Commission(decimal.NewFromInt(250), decimal.RequireFromString("15")).String())
	assert.Equal(t, "1", productsale.Commission(decimal.NewFromInt(10), decimal.NewFromInt(5)).String())
}

func TestClampPercent(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"10", "10"},
		{"12.5 %", "12.5"},
		{"250", "100"},
		{"-5", "0"},
		{"abc", "0"},
		{"", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, productsale.ClampPercent(tt.raw).String())
		})
	}
}
