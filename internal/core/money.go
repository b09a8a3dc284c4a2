// Package core provides the reward domain types and pure helpers.
//
// This file contains the nullable Price type. A price may be absent or
// malformed in upstream data; decoding never fails on it, the price is
// just marked invalid.
package core

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Price is a purchase amount that may be absent.
type Price struct {
	decimal.NullDecimal
}

// NewPrice returns a valid price.
func NewPrice(d decimal.Decimal) Price {
	return Price{NullDecimal: decimal.NewNullDecimal(d)}
}

// NewPriceFromFloat returns an invalid price for NaN and infinities.
func NewPriceFromFloat(f float64) Price {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Price{}
	}
	return NewPrice(decimal.NewFromFloat(f))
}

// ParsePrice parses a decimal string. Comma decimal separators and a
// leading currency symbol are tolerated; anything else yields an invalid price.
func ParsePrice(s string) Price {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return Price{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}
	}
	return NewPrice(d)
}

// Amount returns the price, or zero when it is absent. Used on the spend path.
func (p Price) Amount() decimal.Decimal {
	if !p.Valid {
		return decimal.Zero
	}
	return p.Decimal
}

func (p Price) String() string {
	if !p.Valid {
		return ""
	}
	return p.Decimal.String()
}

// UnmarshalJSON accepts numbers, numeric strings and null. Other values
// decode to an invalid price without an error.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			*p = Price{}
			return nil
		}
		*p = ParsePrice(s)
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		*p = Price{}
		return nil
	}
	*p = NewPrice(d)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(p.Decimal.String()), nil
}

func (p *Price) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode || value.ShortTag() == "!!null" {
		*p = Price{}
		return nil
	}
	*p = ParsePrice(value.Value)
	return nil
}
