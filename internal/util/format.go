package util

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/dustin/go-humanize"
)

// units are indexed by the power of the delimiter.
var units = [...]string{"B", "k", "M", "G", "T", "P", "E", "Z", "Y"}

// FormatCount formats a count into a short human-readable string such as
// "12.1M". The delimiter selects binary (1024) or decimal (1000) scaling.
// Values below one are returned as plain numbers without a unit, and values
// beyond the largest unit are expressed as multiples of "Y".
func FormatCount(value, delimiter float64) string {
	if value < 1 {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	exp := countExponent(value, delimiter)
	return fmt.Sprintf("%.1f%s", value/math.Pow(delimiter, float64(exp)), units[exp])
}

// countExponent picks the unit index for value, correcting for log rounding
// so the scaled value stays in [1, delimiter) below the top unit.
func countExponent(value, delimiter float64) int {
	exp := int(math.Floor(math.Log(value) / math.Log(delimiter)))
	if exp < len(units)-1 && value >= math.Pow(delimiter, float64(exp+1)) {
		exp++
	}
	if exp > 0 && value < math.Pow(delimiter, float64(exp)) {
		exp--
	}
	return min(max(exp, 0), len(units)-1)
}

// FormatExact formats a raw count with thousands separators.
func FormatExact(value uint64) string {
	if value > math.MaxInt64 {
		return humanize.BigComma(new(big.Int).SetUint64(value))
	}
	return humanize.Comma(int64(value))
}

// TruncatePath truncates a path from the left, keeping the rightmost part visible.
func TruncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
