package payoutrate

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is one of the three independent compensation formulas. The values are
// the backend's wire names.
type Mode string

const (
	ModeRecord  Mode = "record"
	ModeFixed   Mode = "fixed"
	ModePercent Mode = "percent"
)

const (
	MaxMoney   = 10_000_000
	MaxPercent = 100
)

var ErrInvalidMode = errors.New("invalid rate mode")

// Modes lists every mode in display order.
var Modes = [...]Mode{ModeRecord, ModeFixed, ModePercent}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeRecord, ModeFixed, ModePercent:
		return m, nil
	case "per_record":
		return ModeRecord, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) Valid() bool {
	switch m {
	case ModeRecord, ModeFixed, ModePercent:
		return true
	}
	return false
}

func (m Mode) max() int64 {
	if m == ModePercent {
		return MaxPercent
	}
	return MaxMoney
}
