package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders a dollar amount with two decimals, e.g. "$12.50".
// Values that are not numbers render as an empty string.
func FormatCurrency(value any) string {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case Price:
		if !v.Valid {
			return ""
		}
		d = v.Decimal
	case float64:
		p := NewPriceFromFloat(v)
		if !p.Valid {
			return ""
		}
		d = p.Decimal
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case string:
		p := ParsePrice(v)
		if !p.Valid {
			return ""
		}
		d = p.Decimal
	default:
		return ""
	}
	return "$" + d.StringFixed(2)
}

// FormatDate renders a date as "Jan 02, 2006", or "" when absent.
func FormatDate(d Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 02, 2006")
}

// FormatMonthName returns the English month name for a 0-based month index.
func FormatMonthName(month int) string {
	if month < 0 || month > 11 {
		return ""
	}
	return time.Month(month + 1).String()
}
