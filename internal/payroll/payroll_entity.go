package payroll

import (
	"time"

	"go-payouts/internal/payoutrate"
	"go-payouts/internal/period"

	"github.com/shopspring/decimal"
)

// State is where a period's workspace is in the save cycle.
type State string

const (
	StateIdle   State = "idle"
	StateSaving State = "saving"
	StateError  State = "error"
)

// Messages shown to the operator when a phase degrades.
const (
	msgLoadFailed   = "Could not load payout data"
	msgReloadFailed = "Rates were saved but could not be reloaded"
)

// View is the rendered state of one period. ProductTotal is paid on top of
// Total.
type View struct {
	Period       period.Period          `json:"period"`
	Rows         []payoutrate.PayoutRow `json:"rows"`
	Total        int64                  `json:"total"`
	ProductTotal int64                  `json:"product_total"`
	Completed    int                    `json:"completed"`
	Revenue      decimal.Decimal        `json:"revenue"`
	Employees    int                    `json:"employees"`
	Services     int                    `json:"services"`
	Unsaved      int                    `json:"unsaved"`
	State        State                  `json:"state"`
	Error        string                 `json:"error,omitempty"`
	LoadedAt     time.Time              `json:"loaded_at"`
}

// EditResult is the outcome of one rate edit: the stored value and the
// recomputed row and fund.
type EditResult struct {
	Value payoutrate.Value     `json:"value"`
	Row   payoutrate.PayoutRow `json:"row"`
	Total int64                `json:"total"`
}

// Line kinds of a day breakdown.
const (
	LineDay     = "day"
	LineFixed   = "fixed"
	LineProduct = "product"
	LineTotal   = "total"
)

const (
	fixedLineLabel   = "Fixed (month)"
	productLineLabel = "Product (month)"
	totalLineLabel   = "Total"
)

type DayLine struct {
	Kind      string          `json:"kind"`
	Label     string          `json:"label"`
	Date      *period.Date    `json:"date,omitempty"`
	Completed int             `json:"completed"`
	Revenue   decimal.Decimal `json:"revenue"`
	Payout    int64           `json:"payout"`
}

// DayBreakdown is the drill-down of one employee: a line per working day,
// the month's fixed part, the month's product commissions and the total.
// Day payouts use the current rates.
type DayBreakdown struct {
	Period     period.Period    `json:"period"`
	EmployeeID string           `json:"employee_id"`
	Name       string           `json:"name"`
	Rates      payoutrate.Rates `json:"rates"`
	Lines      []DayLine        `json:"lines"`
}
