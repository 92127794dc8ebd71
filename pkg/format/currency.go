// Package format provides display-string helpers for dollar and time
// amounts used in narratives and reports.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns a whole-dollar currency string with a dollar sign and
// thousands separators (e.g., "-$1,234").
func Currency(amount float64) string {
	formatted := groupThousands(fmt.Sprintf("%.0f", math.Abs(amount)))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// CurrencyPerMinute returns a per-minute rate with cents (e.g., "$3.25/min").
func CurrencyPerMinute(rate float64) string {
	sign := ""
	if rate < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s$%.2f/min", sign, math.Abs(rate))
}

// Hours returns an hour amount rounded to one decimal (e.g., "41.5 hours").
func Hours(hours float64) string {
	return fmt.Sprintf("%.1f hours", hours)
}

// Minutes returns a whole-minute amount (e.g., "12 min").
func Minutes(minutes float64) string {
	return fmt.Sprintf("%.0f min", minutes)
}

func groupThousands(digits string) string {
	parts := strings.SplitN(digits, ".", 2)
	intPart := parts[0]
	if len(intPart) <= 3 {
		return digits
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	if len(parts) == 2 {
		return builder.String() + "." + parts[1]
	}
	return builder.String()
}
