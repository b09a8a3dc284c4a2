package core

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in  any
		out string
	}{
		{decimal.RequireFromString("195"), "$195.00"},
		{ParsePrice("12.5"), "$12.50"},
		{Price{}, ""},
		{120.99, "$120.99"},
		{math.NaN(), ""},
		{42, "$42.00"},
		{"7.1", "$7.10"},
		{"abc", ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.out {
			t.Fatalf("%v expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(NewDate(2024, 1, 5)); got != "Jan 05, 2024" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDate(Date{}); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestFormatMonthName(t *testing.T) {
	cases := map[int]string{0: "January", 11: "December", -1: "", 12: ""}
	for in, want := range cases {
		if got := FormatMonthName(in); got != want {
			t.Errorf("FormatMonthName(%d) = %q, want %q", in, got, want)
		}
	}
}
