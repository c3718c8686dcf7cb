package grades

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decRef(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func ref(v int) *int {
	return &v
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got.String())
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"9.5", 10},
		{"9.49", 9},
		{"9.49999999999", 9},
		{"13.5", 14},
		{"2.675", 3},
		{"0", 0},
		{"19.5", 20},
		{"14.39", 14},
		// negatives round away from zero
		{"-0.5", -1},
		{"-1.4", -1},
		{"-2.5", -3},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundHalfUp(dec(tt.in)))
		})
	}
}

func TestRoundHalfUpFromFloatInput(t *testing.T) {
	assert.Equal(t, 10, RoundHalfUp(decimal.NewFromFloat(9.5)))
	assert.Equal(t, 9, RoundHalfUp(decimal.NewFromFloat(9.4999999999)))
}

func TestTruncateOneDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"14.99", "14.9"},
		{"14.95", "14.9"},
		{"14.666666666666666667", "14.6"},
		{"2.675", "2.6"},
		{"15", "15.0"},
		{"0.09", "0.0"},
		{"-1.25", "-1.2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := TruncateOneDecimal(dec(tt.in))
			assert.Equal(t, tt.want, got.StringFixed(1))
		})
	}
}

func TestRuleVersionHashIsStable(t *testing.T) {
	first := RuleVersionHash()
	require.Len(t, first, 16)
	assert.Equal(t, first, RuleVersionHash())
}
