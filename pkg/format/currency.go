// Package format turns raw numbers into display strings. It is one-way:
// nothing produced here is ever parsed back into a computation.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/property-underwriting/pkg/underwriting"
)

// NotAvailable is shown in place of a value that cannot be computed.
const NotAvailable = "n/a"

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Percent renders a percentage with two decimals, e.g. "7.88%".
func Percent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// CapRate renders a cap rate, or NotAvailable when it is undefined.
func CapRate(rate underwriting.CapRate) string {
	if !rate.Defined {
		return NotAvailable
	}
	return Percent(rate.Percent)
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
