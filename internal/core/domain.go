package core

import (
	"errors"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Accepted purchase date layouts, tried in order.
var dateLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type (
	// Date is a calendar date normalised to UTC. The zero value means the
	// date is absent or could not be parsed.
	Date struct {
		time.Time
	}

	// DateRange is an inclusive day-level range. Either bound may be zero.
	DateRange struct {
		From Date
		To   Date
	}

	Transaction struct {
		TransactionID    string `json:"transactionId" yaml:"transactionId"`
		CustomerID       string `json:"customerId" yaml:"customerId"`
		CustomerName     string `json:"customerName" yaml:"customerName"`
		PurchaseDate     Date   `json:"purchaseDate" yaml:"purchaseDate"`
		ProductPurchased string `json:"productPurchased" yaml:"productPurchased"`
		Price            Price  `json:"price" yaml:"price"`
	}
)

var (
	ErrEmptyTransactionID = errors.New("empty transaction id")
	ErrEmptyCustomerID    = errors.New("empty customer id")
	ErrMissingDate        = errors.New("both from and to dates are required")
	ErrFutureDate         = errors.New("cannot select future dates")
	ErrInvalidDateRange   = errors.New("from date cannot be after to date")
)

// NewDate creates a new Date from year, month (1-12) and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses s using the accepted purchase date layouts. A timestamp
// with an offset keeps the wall clock written in s, so the purchase stays on
// the calendar day the source recorded.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			h, mi, sec := t.Clock()
			return Date{Time: time.Date(y, m, d, h, mi, sec, t.Nanosecond(), time.UTC)}, nil
		}
		lastErr = err
	}
	return Date{}, lastErr
}

// IsEmpty returns true if the date is absent or invalid.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// StartOfDay returns the first instant of the date.
func (d Date) StartOfDay() time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last instant of the date.
func (d Date) EndOfDay() time.Time {
	return d.StartOfDay().AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MonthIndex returns the 0-based month (0 = January).
func (d Date) MonthIndex() int {
	return int(d.Time.Month()) - 1
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// UnmarshalJSON never fails: unparseable input yields the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalYAML accepts the same layouts as JSON.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDate(value.Value)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

// IsSet reports whether both bounds are present.
func (r DateRange) IsSet() bool {
	return !r.From.IsZero() && !r.To.IsZero()
}

// Validate checks a range submitted for an explicit filter action.
func (r DateRange) Validate(now time.Time) error {
	if !r.IsSet() {
		return ErrMissingDate
	}
	today := Date{Time: now.UTC()}.EndOfDay()
	if r.From.After(today) || r.To.After(today) {
		return ErrFutureDate
	}
	if r.From.After(r.To.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

// Validate is used on ingestion paths only; the report pipeline accepts
// any transaction.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.TransactionID) == "" {
		return ErrEmptyTransactionID
	}
	if strings.TrimSpace(t.CustomerID) == "" {
		return ErrEmptyCustomerID
	}
	return nil
}
