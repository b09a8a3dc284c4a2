package core

import "github.com/shopspring/decimal"

var (
	tierOneThreshold = decimal.NewFromInt(50)
	tierOneCap       = decimal.NewFromInt(50)
	tierTwoThreshold = decimal.NewFromInt(100)
	tierTwoRate      = decimal.NewFromInt(2)
)

// CalculateRewardPoints returns the points earned by a single purchase.
//
// Every dollar above $50 earns 1 point, up to 50 points, and every dollar
// above $100 earns 2 more. Fractions are discarded. Invalid or negative
// amounts earn nothing.
//
// Examples:
//
//	75     -> 25
//	120    -> 90
//	120.99 -> 91
//	1000   -> 1850
func CalculateRewardPoints(amount Price) int64 {
	if !amount.Valid || amount.Decimal.IsNegative() {
		return 0
	}
	a := amount.Decimal
	if a.LessThanOrEqual(tierOneThreshold) {
		return 0
	}

	points := decimal.Min(a.Sub(tierOneThreshold), tierOneCap)
	if a.GreaterThan(tierTwoThreshold) {
		points = points.Add(a.Sub(tierTwoThreshold).Mul(tierTwoRate))
	}
	return points.Floor().IntPart()
}
