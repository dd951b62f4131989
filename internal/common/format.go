package common

import (
	"strconv"
	"strings"
)

// FormatDecimal renders f with the fewest digits that round-trip, but always
// with at least one fractional digit, so 1000 renders as "1000.0" and 999.99
// as "999.99". This matches how the source documents print their aggregates
// and keeps validation messages unambiguous about the value being a decimal.
func FormatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatDecimalComma is FormatDecimal with the target-locale comma separator
// used by the CSV/XLSX exports.
func FormatDecimalComma(f float64) string {
	return strings.ReplaceAll(FormatDecimal(f), ".", ",")
}
