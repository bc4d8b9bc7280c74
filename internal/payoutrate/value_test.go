package payoutrate_test

import (
	"strconv"
	"testing"

	"go-payouts/internal/payoutrate"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		mode payoutrate.Mode
		raw  string
		want payoutrate.Value
	}{
		{"blank is empty", payoutrate.ModeFixed, "   ", payoutrate.Empty()},
		{"negative money", payoutrate.ModeFixed, "-5", payoutrate.Draft(0)},
		{"negative percent", payoutrate.ModePercent, "-5", payoutrate.Draft(0)},
		{"garbage", payoutrate.ModeRecord, "abc", payoutrate.Draft(0)},
		{"percent capped", payoutrate.ModePercent, "150", payoutrate.Draft(100)},
		{"money capped", payoutrate.ModeFixed, "99999999", payoutrate.Draft(payoutrate.MaxMoney)},
		{"rounded half up", payoutrate.ModeRecord, "100.5", payoutrate.Draft(101)},
		{"rounded down", payoutrate.ModePercent, "10.4", payoutrate.Draft(10)},
		{"spaces dropped", payoutrate.ModeFixed, "1 000", payoutrate.Draft(1000)},
		{"comma is not a separator", payoutrate.ModeRecord, "1,5", payoutrate.Draft(15)},
		{"currency suffix", payoutrate.ModeFixed, "300 сом", payoutrate.Draft(300)},
		{"double minus", payoutrate.ModeFixed, "--5", payoutrate.Draft(0)},
		{"plain", payoutrate.ModeFixed, "300", payoutrate.Draft(300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payoutrate.Clamp(tt.mode, tt.raw))
		})
	}
}

func TestClamp_Idempotent(t *testing.T) {
	inputs := []string{"-5", "0", "7.5", "150", "42", "10000001", "x"}
	for _, m := range payoutrate.Modes {
		for _, in := range inputs {
			once := payoutrate.Clamp(m, in)
			n, ok := once.Int64()
			if !assert.True(t, ok) {
				continue
			}
			twice := payoutrate.Clamp(m, strconv.FormatInt(n, 10))
			assert.Equal(t, once, twice, "mode %s input %q", m, in)
		}
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, int64(300), payoutrate.Resolve(payoutrate.Draft(300), payoutrate.Server(100)))
	assert.Equal(t, int64(0), payoutrate.Resolve(payoutrate.Draft(0), payoutrate.Server(100)))
	assert.Equal(t, int64(100), payoutrate.Resolve(payoutrate.Empty(), payoutrate.Server(100)))
	assert.Equal(t, int64(0), payoutrate.Resolve(payoutrate.Empty(), payoutrate.Empty()))
}

func TestParseMode(t *testing.T) {
	m, err := payoutrate.ParseMode(" Percent ")
	assert.NoError(t, err)
	assert.Equal(t, payoutrate.ModePercent, m)

	m, err = payoutrate.ParseMode("per_record")
	assert.NoError(t, err)
	assert.Equal(t, payoutrate.ModeRecord, m)

	_, err = payoutrate.ParseMode("hourly")
	assert.ErrorIs(t, err, payoutrate.ErrInvalidMode)
}
