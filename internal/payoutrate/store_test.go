package payoutrate_test

import (
	"testing"
	"time"

	"go-payouts/internal/appointment"
	"go-payouts/internal/employee"
	"go-payouts/internal/payoutrate"
	"go-payouts/internal/period"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var march = period.Period{Year: 2025, Month: time.March}

func serverRates() payoutrate.PeriodRates {
	return payoutrate.PeriodRates{
		"A": {
			EmployeeID: "A",
			Record:     payoutrate.Slot{ID: "r1", Value: payoutrate.Server(100)},
			Fixed:      payoutrate.Slot{ID: "f1", Value: payoutrate.Server(50)},
		},
	}
}

func TestStore_DraftPrecedence(t *testing.T) {
	store := payoutrate.NewStore(march, serverRates())

	v, err := store.SetEditedValue("A", payoutrate.ModeFixed, "300")
	assert.NoError(t, err)
	assert.Equal(t, payoutrate.Draft(300), v)

	assert.Equal(t, payoutrate.Rates{PerRecord: 100, Fixed: 300, Percent: 0}, store.Rates("A"))
	assert.True(t, store.HasDrafts("A"))

	_, err = store.SetEditedValue("A", payoutrate.ModeFixed, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(50), store.Rates("A").Fixed)
	assert.False(t, store.HasDrafts("A"))
}

func TestStore_SetEditedValue_InvalidMode(t *testing.T) {
	store := payoutrate.NewStore(march, nil)

	_, err := store.SetEditedValue("A", payoutrate.Mode("hourly"), "1")

	assert.ErrorIs(t, err, payoutrate.ErrInvalidMode)
	assert.Empty(t, store.Dirty())
}

func TestStore_Pending(t *testing.T) {
	store := payoutrate.NewStore(march, serverRates())
	_, _ = store.SetEditedValue("A", payoutrate.ModePercent, "10")
	_, _ = store.SetEditedValue("B", payoutrate.ModeRecord, "70")

	got := store.Pending()

	assert.Equal(t, []payoutrate.Record{
		{ID: "r1", EmployeeID: "A", Period: march, Mode: payoutrate.ModeRecord, Rate: 100},
		{ID: "f1", EmployeeID: "A", Period: march, Mode: payoutrate.ModeFixed, Rate: 50},
		{EmployeeID: "A", Period: march, Mode: payoutrate.ModePercent, Rate: 10},
		{EmployeeID: "B", Period: march, Mode: payoutrate.ModeRecord, Rate: 70},
	}, got)
}

func TestStore_ReplaceClearsDrafts(t *testing.T) {
	store := payoutrate.NewStore(march, serverRates())
	_, _ = store.SetEditedValue("A", payoutrate.ModeFixed, "300")

	store.Replace(payoutrate.PeriodRates{
		"A": {EmployeeID: "A", Fixed: payoutrate.Slot{ID: "f1", Value: payoutrate.Server(300)}},
	})

	assert.Empty(t, store.Dirty())
	assert.Equal(t, payoutrate.Rates{Fixed: 300}, store.Rates("A"))
}

func TestBuildPayoutRows_Scenario(t *testing.T) {
	store := payoutrate.NewStore(march, payoutrate.PeriodRates{
		"A": {
			EmployeeID: "A",
			Record:     payoutrate.Slot{ID: "1", Value: payoutrate.Server(100)},
			Fixed:      payoutrate.Slot{ID: "2", Value: payoutrate.Server(0)},
			Percent:    payoutrate.Slot{ID: "3", Value: payoutrate.Server(10)},
		},
	})
	apps := []appointment.Appointment{
		{Employee: "A", Status: "completed", StartAt: "2025-03-05T10:00:00Z", Price: "500"},
	}
	employees := []employee.Employee{{ID: "A", Name: "A"}, {ID: "Z", Name: "Z"}}

	rows := payoutrate.BuildPayoutRows(employees, store, appointment.Aggregate(apps, march))

	if assert.Len(t, rows, 2) {
		assert.Equal(t, 1, rows[0].Completed)
		assert.True(t, decimal.NewFromInt(500).Equal(rows[0].Revenue))
		assert.Equal(t, int64(150), rows[0].Total)

		assert.Equal(t, 0, rows[1].Completed)
		assert.Equal(t, int64(0), rows[1].Total)
	}
	assert.Equal(t, int64(150), payoutrate.Total(rows))
}

func TestRates_TotalIsMonotonic(t *testing.T) {
	revenue := decimal.RequireFromString("1234.5")
	completed := 7

	for _, step := range []int64{0, 1, 5, 37, 99} {
		base := payoutrate.Rates{PerRecord: step, Fixed: step, Percent: step % 100}
		total := base.Total(completed, revenue)

		bumped := []payoutrate.Rates{
			{PerRecord: base.PerRecord + 1, Fixed: base.Fixed, Percent: base.Percent},
			{PerRecord: base.PerRecord, Fixed: base.Fixed + 1, Percent: base.Percent},
			{PerRecord: base.PerRecord, Fixed: base.Fixed, Percent: base.Percent + 1},
		}
		for _, b := range bumped {
			assert.GreaterOrEqual(t, b.Total(completed, revenue), total)
		}
	}
}

func TestRates_PercentPartRoundsHalfAwayFromZero(t *testing.T) {
	r := payoutrate.Rates{Percent: 50}

	assert.Equal(t, int64(1), r.PercentPart(decimal.NewFromInt(1)))
	assert.Equal(t, int64(2), r.PercentPart(decimal.NewFromInt(3)))
}
