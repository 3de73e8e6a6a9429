// Package format renders raw numeric market data (prices, balances,
// volumes) into display strings. Everything here is pure and never
// produces exponential notation; invalid input collapses to a zero
// string instead of an error.
package format

import (
	"math"
	"strconv"
	"strings"
)

// maxFractionDigits caps every formatter, whatever the token decimals say.
const maxFractionDigits = 8

func isInvalid(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// groupThousands inserts sep between thousands groups of the integer part.
// s must be a plain 'f' formatted non-negative number.
func groupThousands(s, sep string) string {
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i:]
	}

	n := len(intPart)
	if n <= 3 {
		return intPart + fracPart
	}

	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(intPart[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + fracPart
}

// trimFraction strips trailing zeros from the fractional part while keeping
// at least minDigits decimal places.
func trimFraction(s string, minDigits int) string {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return s
	}

	frac := s[i+1:]
	end := len(frac)
	for end > minDigits && frac[end-1] == '0' {
		end--
	}
	if end == 0 {
		return s[:i]
	}
	return s[:i+1] + frac[:end]
}

func formatPrice(v float64, withSymbol bool) string {
	prefix := ""
	if withSymbol {
		prefix = "$"
	}

	if isInvalid(v) || v <= 0 {
		return prefix + "0.00"
	}

	switch {
	case v >= 1e6:
		return prefix + groupThousands(strconv.FormatFloat(v, 'f', 0, 64), ",")
	case v >= 1:
		s := strconv.FormatFloat(v, 'f', 4, 64)
		return prefix + groupThousands(trimFraction(s, 2), ",")
	case v >= 0.01:
		s := strconv.FormatFloat(v, 'f', 4, 64)
		return prefix + trimFraction(s, 2)
	}

	// Sub-cent prices: show enough digits to expose at least two
	// significant figures after the leading zeros, capped at 8.
	leadingZeros := int(math.Floor(-math.Log10(v)))
	digits := leadingZeros + 2
	if digits > maxFractionDigits {
		digits = maxFractionDigits
	}
	if digits < 2 {
		digits = 2
	}
	s := strconv.FormatFloat(v, 'f', digits, 64)
	return prefix + trimFraction(s, 2)
}

// FormatPrice renders a USD price, e.g. 0.00000057 -> "$0.00000057".
func FormatPrice(v float64) string {
	return formatPrice(v, true)
}

// FormatPricePlain is FormatPrice without the currency symbol.
func FormatPricePlain(v float64) string {
	return formatPrice(v, false)
}

// FormatLargeNumber renders volumes and market caps with K/M/B suffixes.
// decimals controls the fraction digits of the scaled value.
func FormatLargeNumber(v float64, decimals int) string {
	if isInvalid(v) || v < 0.01 {
		return "$0.00"
	}
	if decimals < 0 {
		decimals = 0
	}
	if decimals > maxFractionDigits {
		decimals = maxFractionDigits
	}

	switch {
	case v >= 1e9:
		return "$" + strconv.FormatFloat(v/1e9, 'f', decimals, 64) + "B"
	case v >= 1e6:
		return "$" + strconv.FormatFloat(v/1e6, 'f', decimals, 64) + "M"
	case v >= 1e3:
		return "$" + strconv.FormatFloat(v/1e3, 'f', decimals, 64) + "K"
	}
	return "$" + strconv.FormatFloat(v, 'f', decimals, 64)
}

// FormatTokenBalance renders a wallet balance. decimals is the token's
// on-chain precision; more decimals buy more displayed precision, up to 8.
func FormatTokenBalance(balance float64, decimals int) string {
	if isInvalid(balance) || balance < 0 {
		return "0.00"
	}

	digits := decimals
	if digits < 2 {
		digits = 2
	}

	switch {
	case balance >= 1000:
		s := strconv.FormatFloat(balance, 'f', 2, 64)
		return groupThousands(s, ",")
	case balance >= 1:
		if digits > 4 {
			digits = 4
		}
	default:
		if digits > maxFractionDigits {
			digits = maxFractionDigits
		}
	}

	s := strconv.FormatFloat(balance, 'f', digits, 64)
	return trimFraction(s, 2)
}

// FormatPercentage renders a change percentage with an explicit sign,
// e.g. 2.5 -> "+2.50%".
func FormatPercentage(v float64) string {
	if isInvalid(v) {
		v = 0
	}
	if v >= 0 {
		return "+" + strconv.FormatFloat(v, 'f', 2, 64) + "%"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// FormatIDR converts a USD amount at the supplied rate and renders rupiah
// with Indonesian digit grouping and no fraction digits.
func FormatIDR(usd, rate float64) string {
	if isInvalid(usd) || isInvalid(rate) || usd <= 0 || rate <= 0 {
		return "Rp0"
	}
	v := usd * rate
	return "Rp" + groupThousands(strconv.FormatFloat(v, 'f', 0, 64), ".")
}

// FormatIDRCompact is the short form with Jt (juta), M (miliar) and
// T (triliun) suffixes at 1e6/1e9/1e12.
func FormatIDRCompact(usd, rate float64) string {
	if isInvalid(usd) || isInvalid(rate) || usd <= 0 || rate <= 0 {
		return "Rp0"
	}
	v := usd * rate

	scaled := v
	suffix := ""
	switch {
	case v >= 1e12:
		scaled, suffix = v/1e12, " T"
	case v >= 1e9:
		scaled, suffix = v/1e9, " M"
	case v >= 1e6:
		scaled, suffix = v/1e6, " Jt"
	default:
		return "Rp" + groupThousands(strconv.FormatFloat(v, 'f', 0, 64), ".")
	}

	s := trimFraction(strconv.FormatFloat(scaled, 'f', 2, 64), 0)
	// Indonesian locale writes the decimal separator as a comma.
	s = strings.ReplaceAll(s, ".", ",")
	return "Rp" + s + suffix
}
