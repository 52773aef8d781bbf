package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const CurrencyPrefix = "R$ "

const periodLayout = "2006-01-02"

// FormatCurrency renders a value the way the report shows totals:
// "R$ 1,234,567.89" (comma thousands separator, two decimals).
func FormatCurrency(v decimal.Decimal) string {
	s := v.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	return CurrencyPrefix + sign + groupThousands(intPart) + "." + fracPart
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPeriod renders the active date interval, e.g. "2024-01-01 a 2024-01-31".
func FormatPeriod(start, end time.Time) string {
	return start.Format(periodLayout) + " a " + end.Format(periodLayout)
}
