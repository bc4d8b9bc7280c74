package payoutrate

import (
	"encoding/json"
	"strings"

	"go-payouts/internal/shared/jsonx"

	"github.com/shopspring/decimal"
)

type Kind uint8

const (
	KindEmpty Kind = iota
	KindServer
	KindDraft
)

func (k Kind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindDraft:
		return "draft"
	}
	return "empty"
}

// Value is a rate as the operator sees it: the last value loaded from the
// backend, an unsaved edit, or nothing at all. Empty is "not set", never zero.
type Value struct {
	kind Kind
	n    int64
}

func Empty() Value {
	return Value{}
}

func Server(n int64) Value {
	return Value{kind: KindServer, n: n}
}

func Draft(n int64) Value {
	return Value{kind: KindDraft, n: n}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty
}

// Int64 returns the number and whether v holds one.
func (v Value) Int64() (int64, bool) {
	return v.n, v.kind != KindEmpty
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindEmpty {
		return []byte("null"), nil
	}
	return json.Marshal(v.n)
}

// Resolve picks the number shown for a rate: a draft wins over the server
// value, and a missing value reads as zero.
func Resolve(draft, server Value) int64 {
	if n, ok := draft.Int64(); ok {
		return n
	}
	if n, ok := server.Int64(); ok {
		return n
	}
	return 0
}

// Input is Resolve without the zero fallback: the value that would be sent
// to the backend, if any.
func Input(draft, server Value) Value {
	if !draft.IsEmpty() {
		return draft
	}
	return server
}

// Clamp turns raw operator input into a draft. Blank input is Empty (the
// field is mid-edit). Otherwise it is read like every other amount: all
// characters but digits, '.' and '-' are dropped, so "1 000" is 1000 and a
// comma is not a decimal separator. Anything unreadable or negative becomes
// Draft(0).
// Numbers are rounded half away from zero and capped per mode: money modes
// at MaxMoney, percent at MaxPercent. Clamp(m, Clamp(m, x) as text) is
// Clamp(m, x).
func Clamp(mode Mode, raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Empty()
	}

	d, ok := jsonx.ParseDecimal(s)
	if !ok || d.IsNegative() {
		return Draft(0)
	}

	limit := decimal.NewFromInt(mode.max())
	if d.GreaterThan(limit) {
		return Draft(mode.max())
	}
	return Draft(d.Round(0).IntPart())
}

// serverValue reads a backend rate. Blank or unreadable values are absent.
func serverValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Empty()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Empty()
	}
	if d.IsNegative() {
		return Server(0)
	}
	return Server(d.Round(0).IntPart())
}
