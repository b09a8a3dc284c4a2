// Package report turns raw purchase transactions into the rewards report:
// range filtering, grouping by customer and the monthly and all-time totals.
//
// Everything here is pure and recomputed on each call.
package report

import "rewards/internal/core"

// Report is the output of one pipeline run.
type Report struct {
	Range        core.DateRange
	Transactions []core.Transaction // filtered, input order
	Monthly      []core.MonthlyRewardSummary
	Totals       []core.TotalRewardSummary
}

// Assemble runs filter, group and both aggregations over txs.
func Assemble(txs []core.Transaction, r core.DateRange) Report {
	filtered := FilterByDateRange(txs, r.From, r.To)
	groups := GroupByCustomer(filtered)
	return Report{
		Range:        r,
		Transactions: filtered,
		Monthly:      AllMonthlyRewards(groups),
		Totals:       AllTotalRewards(groups),
	}
}
