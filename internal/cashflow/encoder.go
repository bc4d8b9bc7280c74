package cashflow

import (
	"strconv"
)

// EntryEncoder renders an Expense in one of the ledger's field schemas.
type EntryEncoder interface {
	Name() string
	Encode(e Expense) map[string]any
}

// PrimaryEncoder is the type/amount/description/date schema.
type PrimaryEncoder struct{}

func (PrimaryEncoder) Name() string { return "primary" }

func (PrimaryEncoder) Encode(e Expense) map[string]any {
	payload := map[string]any{
		"type":        KindExpense,
		"amount":      strconv.FormatInt(e.Amount, 10),
		"description": e.Label,
		"date":        e.Period.FirstDay(),
	}
	if e.Cashbox != "" {
		payload["cashbox"] = e.Cashbox
	}
	return payload
}

// AlternateEncoder is the older kind/value/comment/datetime schema.
type AlternateEncoder struct{}

func (AlternateEncoder) Name() string { return "alternate" }

func (AlternateEncoder) Encode(e Expense) map[string]any {
	payload := map[string]any{
		"kind":     KindExpense,
		"value":    strconv.FormatInt(e.Amount, 10),
		"comment":  e.Label,
		"datetime": e.Period.FirstDay() + "T00:00:00",
	}
	if e.Cashbox != "" {
		payload["cashbox"] = e.Cashbox
	}
	return payload
}

// DefaultEncoders is the order schemas are tried in.
func DefaultEncoders() []EntryEncoder {
	return []EntryEncoder{PrimaryEncoder{}, AlternateEncoder{}}
}
