package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rewards/internal/core"
)

// ErrBadDate is returned for a date parameter that does not parse.
var ErrBadDate = errors.New("invalid date")

// DefaultDateRange is the last months up to today.
func DefaultDateRange(now time.Time, months int) core.DateRange {
	now = now.UTC()
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	from := today.AddDate(0, -months, 0)
	return core.DateRange{
		From: core.NewDate(from.Year(), int(from.Month()), from.Day()),
		To:   today,
	}
}

// ParseDateRange reads the from and to parameters. With neither present it
// returns the default range; otherwise both are required and validated
// against now.
func ParseDateRange(values url.Values, now time.Time, defaultMonths int) (core.DateRange, error) {
	fromStr := sanitizeInput(values.Get("from"))
	toStr := sanitizeInput(values.Get("to"))
	if fromStr == "" && toStr == "" {
		return DefaultDateRange(now, defaultMonths), nil
	}

	var r core.DateRange
	var err error
	if fromStr != "" {
		if r.From, err = core.ParseDate(fromStr); err != nil {
			return core.DateRange{}, fmt.Errorf("%w: from=%q", ErrBadDate, fromStr)
		}
	}
	if toStr != "" {
		if r.To, err = core.ParseDate(toStr); err != nil {
			return core.DateRange{}, fmt.Errorf("%w: to=%q", ErrBadDate, toStr)
		}
	}
	if err := r.Validate(now); err != nil {
		return core.DateRange{}, err
	}
	return r, nil
}

// rangeErrorMessage turns a ParseDateRange error into text for the filter form.
func rangeErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingDate):
		return "Both From and To dates are required"
	case errors.Is(err, core.ErrFutureDate):
		return "Cannot select future dates"
	case errors.Is(err, core.ErrInvalidDateRange):
		return "From date cannot be after To date"
	case errors.Is(err, ErrBadDate):
		return "Dates must use the YYYY-MM-DD format"
	default:
		return "Invalid date range"
	}
}

// RequireMethod returns a 405 response when r.Method is not allowed, or nil.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET allows GET and HEAD.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}
