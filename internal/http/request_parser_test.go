package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"rewards/internal/core"
)

var fixedNow = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

func TestDefaultDateRange(t *testing.T) {
	r := DefaultDateRange(fixedNow, 3)
	if r.From != core.NewDate(2024, 2, 15) || r.To != core.NewDate(2024, 5, 15) {
		t.Fatalf("DefaultDateRange = %s..%s", r.From, r.To)
	}
	if err := r.Validate(fixedNow); err != nil {
		t.Fatalf("default range must be valid: %v", err)
	}
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name     string
		values   url.Values
		wantFrom core.Date
		wantTo   core.Date
		wantErr  error
	}{
		{
			name:     "no parameters uses default",
			values:   url.Values{},
			wantFrom: core.NewDate(2024, 2, 15),
			wantTo:   core.NewDate(2024, 5, 15),
		},
		{
			name:     "explicit range",
			values:   url.Values{"from": {"2024-01-01"}, "to": {"2024-03-31"}},
			wantFrom: core.NewDate(2024, 1, 1),
			wantTo:   core.NewDate(2024, 3, 31),
		},
		{
			name:     "today is allowed",
			values:   url.Values{"from": {"2024-05-15"}, "to": {"2024-05-15"}},
			wantFrom: core.NewDate(2024, 5, 15),
			wantTo:   core.NewDate(2024, 5, 15),
		},
		{
			name:     "whitespace trimmed",
			values:   url.Values{"from": {" 2024-01-01 "}, "to": {"2024-01-31\t"}},
			wantFrom: core.NewDate(2024, 1, 1),
			wantTo:   core.NewDate(2024, 1, 31),
		},
		{
			name:    "missing to",
			values:  url.Values{"from": {"2024-01-01"}},
			wantErr: core.ErrMissingDate,
		},
		{
			name:    "missing from",
			values:  url.Values{"to": {"2024-01-01"}},
			wantErr: core.ErrMissingDate,
		},
		{
			name:    "future date",
			values:  url.Values{"from": {"2024-05-01"}, "to": {"2024-05-16"}},
			wantErr: core.ErrFutureDate,
		},
		{
			name:    "inverted",
			values:  url.Values{"from": {"2024-03-01"}, "to": {"2024-02-01"}},
			wantErr: core.ErrInvalidDateRange,
		},
		{
			name:    "garbage",
			values:  url.Values{"from": {"yesterday"}, "to": {"2024-02-01"}},
			wantErr: ErrBadDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateRange(tt.values, fixedNow, 3)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.From != tt.wantFrom || got.To != tt.wantTo {
				t.Fatalf("range = %s..%s, want %s..%s", got.From, got.To, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestRangeErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{core.ErrMissingDate, "Both From and To dates are required"},
		{core.ErrFutureDate, "Cannot select future dates"},
		{core.ErrInvalidDateRange, "From date cannot be after To date"},
		{ErrBadDate, "Dates must use the YYYY-MM-DD format"},
		{errors.New("other"), "Invalid date range"},
	}
	for _, tt := range tests {
		if got := rangeErrorMessage(tt.err); got != tt.want {
			t.Errorf("rangeErrorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  2024-01-01  ", "2024-01-01"},
		{"2024\x00-01-01", "2024-01-01"},
		{"a\tb", "a\tb"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRequireMethod(t *testing.T) {
	get := httptest.NewRequest(http.MethodGet, "/", nil)
	post := httptest.NewRequest(http.MethodPost, "/", nil)

	if RequireGET(get) != nil {
		t.Error("GET should be allowed")
	}
	if RequireGET(post) == nil {
		t.Error("POST should be rejected by RequireGET")
	}
	if RequirePOST(post) != nil {
		t.Error("POST should be allowed")
	}

	w := httptest.NewRecorder()
	RequirePOST(get).Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "POST" {
		t.Errorf("got %d Allow=%q", w.Code, w.Header().Get("Allow"))
	}
}
