package appointment_test

import (
	"encoding/json"
	"testing"
	"time"

	"go-payouts/internal/appointment"
	"go-payouts/internal/period"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decodeAppointments(t *testing.T, raw string) []appointment.Appointment {
	t.Helper()
	var apps []appointment.Appointment
	if err := json.Unmarshal([]byte(raw), &apps); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return apps
}

var march = period.Period{Year: 2025, Month: time.March}

func TestAggregate_Scenario(t *testing.T) {
	apps := decodeAppointments(t, `[
		{"employee":"A","status":"completed","start_at":"2025-03-05T10:00:00Z","price":500}
	]`)

	agg := appointment.Aggregate(apps, march)

	got := agg.For("A")
	assert.Equal(t, 1, got.Completed)
	assert.True(t, decimal.NewFromInt(500).Equal(got.Revenue))
}

func TestAggregate_Filtering(t *testing.T) {
	apps := decodeAppointments(t, `[
		{"barber":"A","status":"completed","start_at":"2025-03-05T10:00:00Z","price":"100"},
		{"barber":"A","status":" Completed ","start_at":"2025-03-06T10:00:00Z","price":"50.5"},
		{"barber":"A","status":"canceled","start_at":"2025-03-05T10:00:00Z","price":"1000"},
		{"barber":"A","status":"completed","start_at":"2025-04-01T10:00:00Z","price":"1000"},
		{"barber":"A","status":"completed","start_at":"not a date","price":"1000"},
		{"status":"completed","start_at":"2025-03-05T10:00:00Z","price":"1000"},
		{"barber":{"id":"B"},"status":"completed","start_at":"2025-03-05T10:00:00Z","price":"abc"},
		{"barber":"","master":"C","status":"completed","start_at":"2025-03-05T10:00:00Z","price":"1 200 сом"}
	]`)

	agg := appointment.Aggregate(apps, march)

	a := agg.For("A")
	assert.Equal(t, 2, a.Completed)
	assert.Equal(t, "150.5", a.Revenue.String())

	b := agg.For("B")
	assert.Equal(t, 1, b.Completed)
	assert.True(t, b.Revenue.IsZero())

	c := agg.For("C")
	assert.Equal(t, 1, c.Completed)
	assert.Equal(t, "1200", c.Revenue.String())

	assert.Equal(t, []string{"A", "B", "C"}, agg.Employees())
	assert.Equal(t, 4, agg.Total().Completed)
}

func TestAggregate_OffsetMovesMonthBoundary(t *testing.T) {
	apps := decodeAppointments(t, `[
		{"barber":"A","status":"completed","start_at":"2025-02-28T19:00:00Z","price":100},
		{"barber":"A","status":"completed","start_at":"2025-03-31T17:59:00Z","price":100},
		{"barber":"A","status":"completed","start_at":"2025-03-31T18:00:00Z","price":100}
	]`)

	agg := appointment.Aggregate(apps, march)

	assert.Equal(t, 2, agg.For("A").Completed)

	days := agg.Days("A")
	if assert.Len(t, days, 2) {
		assert.Equal(t, "2025-03-01", days[0].Date.String())
		assert.Equal(t, "2025-03-31", days[1].Date.String())
	}
}

func TestAggregate_UnknownEmployeeIsZero(t *testing.T) {
	agg := appointment.Aggregate(nil, march)

	assert.True(t, agg.For("nobody").IsZero())
	assert.Empty(t, agg.Days("nobody"))
	assert.Empty(t, agg.Employees())
}

func TestAggregate_DaysAreCopies(t *testing.T) {
	apps := decodeAppointments(t, `[
		{"barber":"A","status":"completed","start_at":"2025-03-05T10:00:00Z","price":100}
	]`)
	agg := appointment.Aggregate(apps, march)

	days := agg.Days("A")
	days[0].Completed = 99

	assert.Equal(t, 1, agg.Days("A")[0].Completed)
}

func TestAggregateRange(t *testing.T) {
	apps := decodeAppointments(t, `[
		{"barber":"A","status":"completed","start_at":"2025-03-01T10:00:00Z","price":100},
		{"barber":"A","status":"completed","start_at":"2025-03-07T10:00:00Z","price":100},
		{"barber":"A","status":"completed","start_at":"2025-03-08T10:00:00Z","price":100}
	]`)

	from := period.Date{Year: 2025, Month: time.March, Day: 1}
	to := period.Date{Year: 2025, Month: time.March, Day: 7}

	agg := appointment.AggregateRange(apps, from, to)

	assert.Equal(t, 2, agg.For("A").Completed)
}

func TestNormalizeServices(t *testing.T) {
	got := appointment.NormalizeServices([]appointment.RemoteService{
		{ID: "1", ServiceName: "Fade", Name: "ignored", Price: "700"},
		{ID: "2", Name: "Beard"},
		{ID: "3"},
	})

	assert.Equal(t, "Fade", got[0].Name)
	assert.Equal(t, "700", got[0].Price.String())
	assert.Equal(t, "Beard", got[1].Name)
	assert.Equal(t, "—", got[2].Name)
}
