// Package jsonx decodes the loosely typed payloads of the accounting backend,
// where the same field may arrive as a string, a number, an object or null.
package jsonx

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Text accepts a JSON string, number or boolean and keeps its textual form.
// Objects resolve to their "id" (or "uuid") member; null and anything else
// become "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{':
		var obj struct {
			ID   Text `json:"id"`
			UUID Text `json:"uuid"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			*t = ""
			return nil
		}
		*t = FirstNonEmpty(obj.ID, obj.UUID)
	case '[':
		*t = ""
	default:
		*t = Text(string(data))
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

func (t Text) Trimmed() string {
	return strings.TrimSpace(string(t))
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...Text) Text {
	for _, v := range values {
		if v.Trimmed() != "" {
			return v
		}
	}
	return ""
}

// ParseDecimal reads a money-like value the way the backend's clients always
// have: every character except digits, '.' and '-' is dropped first.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Decimal is ParseDecimal with zero as the fallback.
func Decimal(t Text) decimal.Decimal {
	d, _ := ParseDecimal(string(t))
	return d
}
