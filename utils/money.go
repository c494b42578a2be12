package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal money amount from its transit (string)
// representation. Amounts never pass through binary floats.
func ParseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// FormatAmount renders an amount with 2-decimal display rounding. Only for
// presentation boundaries; stored amounts keep their full precision.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
