package report

import (
	"github.com/shopspring/decimal"

	"rewards/internal/core"
)

// monthKey identifies a calendar month. Transactions without a usable
// purchase date fall into the undated key so that no points are lost
// when the report is not range filtered.
type monthKey struct {
	year  int
	month int // 0-11
}

var undated = monthKey{year: 0, month: -1}

func keyOf(d core.Date) monthKey {
	if d.IsEmpty() {
		return undated
	}
	return monthKey{year: d.Year(), month: d.MonthIndex()}
}

// MonthlyRewardsForCustomer sums reward points per calendar month of a
// single customer's transactions. Months appear in first-seen order and
// the returned summaries carry no customer identity or spend.
func MonthlyRewardsForCustomer(txs []core.Transaction) []core.MonthlyRewardSummary {
	var order []monthKey
	points := make(map[monthKey]int64)
	for _, tx := range txs {
		k := keyOf(tx.PurchaseDate)
		if _, ok := points[k]; !ok {
			order = append(order, k)
		}
		points[k] += core.CalculateRewardPoints(tx.Price)
	}

	out := make([]core.MonthlyRewardSummary, 0, len(order))
	for _, k := range order {
		out = append(out, core.MonthlyRewardSummary{
			Month:        k.month,
			Year:         k.year,
			RewardPoints: points[k],
			MonthName:    core.FormatMonthName(k.month),
		})
	}
	return out
}

// AllMonthlyRewards returns one summary per customer and month, flattened
// in customer order. Spend is recomputed from the customer's transactions
// falling in the same month.
func AllMonthlyRewards(groups *CustomerGroups) []core.MonthlyRewardSummary {
	var out []core.MonthlyRewardSummary
	for _, g := range groups.Groups() {
		for _, m := range MonthlyRewardsForCustomer(g.Transactions) {
			m.CustomerID = g.CustomerID
			m.CustomerName = g.CustomerName
			m.TotalAmountSpent = spentIn(g.Transactions, monthKey{year: m.Year, month: m.Month})
			out = append(out, m)
		}
	}
	return out
}

func spentIn(txs []core.Transaction, k monthKey) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if keyOf(tx.PurchaseDate) == k {
			total = total.Add(tx.Price.Amount())
		}
	}
	return total
}
