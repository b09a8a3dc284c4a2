package report

import (
	"github.com/shopspring/decimal"

	"rewards/internal/core"
)

// AllTotalRewards returns one summary per customer covering all of the
// customer's transactions.
func AllTotalRewards(groups *CustomerGroups) []core.TotalRewardSummary {
	out := make([]core.TotalRewardSummary, 0, groups.Len())
	for _, g := range groups.Groups() {
		var points int64
		spent := decimal.Zero
		for _, tx := range g.Transactions {
			points += core.CalculateRewardPoints(tx.Price)
			spent = spent.Add(tx.Price.Amount())
		}
		out = append(out, core.TotalRewardSummary{
			CustomerID:       g.CustomerID,
			CustomerName:     g.CustomerName,
			RewardPoints:     points,
			TotalAmountSpent: spent,
		})
	}
	return out
}
