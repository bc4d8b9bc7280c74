package cashflow

import (
	"strings"

	"go-payouts/internal/period"
	"go-payouts/internal/shared/jsonx"

	"github.com/shopspring/decimal"
)

const KindExpense = "expense"

// Entry is a ledger entry as read back from the backend. Both historical
// schemas decode into it.
type Entry struct {
	ID          string
	Description string
	Kind        string
	Amount      decimal.Decimal
}

// IsExpense accepts either an explicit expense kind or a negative amount.
func (e Entry) IsExpense() bool {
	return strings.EqualFold(e.Kind, KindExpense) || e.Amount.IsNegative()
}

type remoteEntry struct {
	ID          jsonx.Text `json:"id"`
	UUID        jsonx.Text `json:"uuid"`
	Description jsonx.Text `json:"description"`
	Note        jsonx.Text `json:"note"`
	Comment     jsonx.Text `json:"comment"`
	Type        jsonx.Text `json:"type"`
	Kind        jsonx.Text `json:"kind"`
	Direction   jsonx.Text `json:"direction"`
	Amount      jsonx.Text `json:"amount"`
	Value       jsonx.Text `json:"value"`
	Sum         jsonx.Text `json:"sum"`
}

func (r remoteEntry) entry() Entry {
	return Entry{
		ID:          jsonx.FirstNonEmpty(r.ID, r.UUID).Trimmed(),
		Description: jsonx.FirstNonEmpty(r.Description, r.Note, r.Comment).String(),
		Kind:        jsonx.FirstNonEmpty(r.Type, r.Kind, r.Direction).Trimmed(),
		Amount:      jsonx.Decimal(jsonx.FirstNonEmpty(r.Amount, r.Value, r.Sum)),
	}
}

// Expense is the entry the reconciler wants the ledger to hold.
type Expense struct {
	Period  period.Period
	Label   string
	Amount  int64
	Cashbox string
}

// Label is the text that identifies the payroll entry of a period.
func Label(prefix string, p period.Period) string {
	return strings.TrimSpace(prefix) + " " + p.String()
}
