package appointment

import (
	"strings"
	"time"

	"go-payouts/internal/period"
	"go-payouts/internal/shared/jsonx"

	"github.com/shopspring/decimal"
)

const StatusCompleted = "completed"

// Appointment is an item of the backend appointments list. Only the fields
// the payroll needs are decoded.
type Appointment struct {
	ID       jsonx.Text `json:"id"`
	Barber   jsonx.Text `json:"barber"`
	Employee jsonx.Text `json:"employee"`
	Master   jsonx.Text `json:"master"`
	Status   jsonx.Text `json:"status"`
	StartAt  jsonx.Text `json:"start_at"`
	Price    jsonx.Text `json:"price"`
}

// EmployeeRef is the first non-empty of barber, employee and master.
func (a Appointment) EmployeeRef() string {
	return jsonx.FirstNonEmpty(a.Barber, a.Employee, a.Master).Trimmed()
}

func (a Appointment) IsCompleted() bool {
	return strings.EqualFold(a.Status.Trimmed(), StatusCompleted)
}

func (a Appointment) StartTime() (time.Time, bool) {
	return period.ParseTimestamp(a.StartAt.String())
}

// Day is the shop-local calendar day the appointment starts on.
func (a Appointment) Day() (period.Date, bool) {
	t, ok := a.StartTime()
	if !ok {
		return period.Date{}, false
	}
	return period.ToCalendarDate(t), true
}

// Amount is the price, zero when it cannot be parsed.
func (a Appointment) Amount() decimal.Decimal {
	return jsonx.Decimal(a.Price)
}

// Service is a normalized item of the services catalog.
type Service struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type RemoteService struct {
	ID          jsonx.Text `json:"id"`
	ServiceName jsonx.Text `json:"service_name"`
	Name        jsonx.Text `json:"name"`
	Price       jsonx.Text `json:"price"`
}

func NormalizeServices(raw []RemoteService) []Service {
	out := make([]Service, 0, len(raw))
	for _, r := range raw {
		name := jsonx.FirstNonEmpty(r.ServiceName, r.Name).Trimmed()
		if name == "" {
			name = "—"
		}
		out = append(out, Service{
			ID:    r.ID.Trimmed(),
			Name:  name,
			Price: jsonx.Decimal(r.Price),
		})
	}
	return out
}
