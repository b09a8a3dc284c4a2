package report

import (
	"time"

	"rewards/internal/core"
)

// FilterByDateRange keeps the transactions purchased between the start of
// from and the end of to, both days included, preserving input order.
//
// If either bound is empty the input is returned unchanged. Transactions
// whose purchase date is missing or unparseable never match a range.
func FilterByDateRange(txs []core.Transaction, from, to core.Date) []core.Transaction {
	if from.IsEmpty() || to.IsEmpty() {
		return txs
	}
	start := from.StartOfDay()
	end := to.EndOfDay()

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if withinDay(tx.PurchaseDate, start, end) {
			out = append(out, tx)
		}
	}
	return out
}

func withinDay(d core.Date, start, end time.Time) bool {
	if d.IsEmpty() {
		return false
	}
	return !d.Before(start) && !d.After(end)
}
