// Package format renders numbers and dates the way the dashboard shows them.
package format

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency formats v as US dollars: "$1,234.56", "-$50.00".
func Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(s, ".")
	out := "$" + group(whole) + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// CurrencyPtr formats v, or returns "" when v is nil.
func CurrencyPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return Currency(*v)
}

// Fixed formats v with the given number of decimal places.
func Fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Percent formats v (already scaled to 100) with two places and a % sign.
func Percent(v float64) string {
	s := Fixed(v, 2)
	if s == "" {
		return ""
	}
	return s + "%"
}

// Qty drops a trailing ".0" from whole share counts.
func Qty(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// Date renders t as "Oct 14, 2022" in loc (UTC when nil).
func Date(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Jan 2, 2006")
}

func group(digits string) string {
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
