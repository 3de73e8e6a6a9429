package format

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want string
	}{
		{"zero", 0, "$0.00"},
		{"negative", -3.2, "$0.00"},
		{"nan", math.NaN(), "$0.00"},
		{"inf", math.Inf(1), "$0.00"},
		{"grouped millions", 1234567, "$1,234,567"},
		{"mid range", 154.5, "$154.50"},
		{"mid range four digits", 1.2345, "$1.2345"},
		{"cents", 0.5, "$0.50"},
		{"sub cent", 0.0042, "$0.0042"},
		{"deep sub cent", 0.00000057, "$0.00000057"},
		{"capped at eight digits", 0.000000001234, "$0.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatPrice(tc.in))
		})
	}
}

func TestFormatPriceNeverExponential(t *testing.T) {
	values := []float64{0.1, 0.01, 0.001, 0.0001, 1e-5, 1e-6, 1e-7, 5.7e-7, 9.9e-3}
	for _, v := range values {
		s := FormatPrice(v)
		assert.NotContains(t, s, "e", "value %g", v)
		assert.NotContains(t, s, "E", "value %g", v)
	}
}

func TestFormatPriceRoundTrip(t *testing.T) {
	// Sub-cent prices must survive a parse back within displayed precision.
	values := []float64{0.00000057, 0.0042, 0.0099, 0.005}
	for _, v := range values {
		s := strings.TrimPrefix(FormatPrice(v), "$")
		parsed, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err)
		assert.InEpsilon(t, v, parsed, 0.01, "value %g rendered as %q", v, s)
	}
}

func TestFormatPricePlain(t *testing.T) {
	assert.Equal(t, "0.00", FormatPricePlain(0))
	assert.Equal(t, "154.50", FormatPricePlain(154.5))
}

func TestFormatLargeNumber(t *testing.T) {
	cases := []struct {
		in       float64
		decimals int
		want     string
	}{
		{1234567, 2, "$1.23M"},
		{1234567890, 2, "$1.23B"},
		{1500, 1, "$1.5K"},
		{999, 2, "$999.00"},
		{0.005, 2, "$0.00"},
		{0, 2, "$0.00"},
		{math.NaN(), 2, "$0.00"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatLargeNumber(tc.in, tc.decimals))
	}
}

func TestFormatTokenBalance(t *testing.T) {
	cases := []struct {
		name     string
		balance  float64
		decimals int
		want     string
	}{
		{"grouped", 1234567.891, 9, "1,234,567.89"},
		{"unit range", 12.345678, 9, "12.3457"},
		{"small balance", 0.000123456789, 9, "0.00012346"},
		{"few decimals", 0.5, 2, "0.50"},
		{"zero", 0, 6, "0.00"},
		{"negative", -5, 6, "0.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatTokenBalance(tc.balance, tc.decimals)
			assert.Equal(t, tc.want, got)

			if i := strings.IndexByte(got, '.'); i >= 0 {
				assert.LessOrEqual(t, len(got)-i-1, 8, "more than 8 fraction digits")
			}
		})
	}
}

func TestFormatTokenBalanceFractionCap(t *testing.T) {
	// Huge on-chain precision must not leak past 8 displayed digits.
	got := FormatTokenBalance(0.123456789123456789, 18)
	i := strings.IndexByte(got, '.')
	require.GreaterOrEqual(t, i, 0)
	assert.LessOrEqual(t, len(got)-i-1, 8)
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "+2.50%", FormatPercentage(2.5))
	assert.Equal(t, "+0.00%", FormatPercentage(0))
	assert.Equal(t, "-1.25%", FormatPercentage(-1.25))
	assert.Equal(t, "+0.00%", FormatPercentage(math.NaN()))
}

func TestFormatIDR(t *testing.T) {
	assert.Equal(t, "Rp15.800", FormatIDR(1, 15800))
	assert.Equal(t, "Rp0", FormatIDR(0, 15800))
	assert.Equal(t, "Rp0", FormatIDR(10, 0))
}

func TestFormatIDRCompact(t *testing.T) {
	// 100 USD * 15800 = 1.58 juta rupiah
	assert.Equal(t, "Rp1,58 Jt", FormatIDRCompact(100, 15800))
	// 100k USD * 15800 = 1.58 miliar
	assert.Equal(t, "Rp1,58 M", FormatIDRCompact(100000, 15800))
	// 100M USD * 15800 = 1.58 triliun
	assert.Equal(t, "Rp1,58 T", FormatIDRCompact(100000000, 15800))
	assert.Equal(t, "Rp15.800", FormatIDRCompact(1, 15800))
}
