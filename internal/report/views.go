package report

import (
	"cmp"
	"slices"

	"rewards/internal/core"
)

// TransactionRow is one purchase as shown in a month section.
type TransactionRow struct {
	CustomerID      string
	CustomerName    string
	TransactionID   string
	AmountSpent     core.Price
	TransactionDate core.Date
	TransactionYear int
	RewardPoints    int64
}

// MonthSection lists every customer's purchases for one calendar month.
type MonthSection struct {
	Year      int
	Month     int
	MonthName string
	Rows      []TransactionRow
}

// CustomerMonths is a customer's monthly summaries in calendar order.
type CustomerMonths struct {
	CustomerID   string
	CustomerName string
	Months       []core.MonthlyRewardSummary
}

func compareMonth(aYear, aMonth, bYear, bMonth int) int {
	if c := cmp.Compare(aYear, bYear); c != 0 {
		return c
	}
	return cmp.Compare(aMonth, bMonth)
}

// SortMonthly returns a copy of monthly ordered by year then month. Ties
// keep their input order.
func SortMonthly(monthly []core.MonthlyRewardSummary) []core.MonthlyRewardSummary {
	out := slices.Clone(monthly)
	slices.SortStableFunc(out, func(a, b core.MonthlyRewardSummary) int {
		return compareMonth(a.Year, a.Month, b.Year, b.Month)
	})
	return out
}

// ByMonth builds one section per month present in monthly, sorted by year
// then month. Each section holds the matching transactions of every
// customer that has a summary for that month.
func ByMonth(monthly []core.MonthlyRewardSummary, txs []core.Transaction) []MonthSection {
	index := make(map[monthKey]int)
	var sections []MonthSection
	for _, m := range monthly {
		k := monthKey{year: m.Year, month: m.Month}
		i, ok := index[k]
		if !ok {
			i = len(sections)
			index[k] = i
			sections = append(sections, MonthSection{Year: m.Year, Month: m.Month, MonthName: m.MonthName})
		}
		for _, tx := range txs {
			if tx.CustomerID != m.CustomerID || keyOf(tx.PurchaseDate) != k {
				continue
			}
			sections[i].Rows = append(sections[i].Rows, TransactionRow{
				CustomerID:      m.CustomerID,
				CustomerName:    m.CustomerName,
				TransactionID:   tx.TransactionID,
				AmountSpent:     tx.Price,
				TransactionDate: tx.PurchaseDate,
				TransactionYear: k.year,
				RewardPoints:    core.CalculateRewardPoints(tx.Price),
			})
		}
	}
	slices.SortStableFunc(sections, func(a, b MonthSection) int {
		return compareMonth(a.Year, a.Month, b.Year, b.Month)
	})
	return sections
}

// ByCustomer regroups monthly summaries per customer, customers in
// first-seen order and months in calendar order.
func ByCustomer(monthly []core.MonthlyRewardSummary) []CustomerMonths {
	index := make(map[string]int)
	var out []CustomerMonths
	for _, m := range monthly {
		i, ok := index[m.CustomerID]
		if !ok {
			i = len(out)
			index[m.CustomerID] = i
			out = append(out, CustomerMonths{CustomerID: m.CustomerID, CustomerName: m.CustomerName})
		}
		out[i].Months = append(out[i].Months, m)
	}
	for i := range out {
		out[i].Months = SortMonthly(out[i].Months)
	}
	return out
}
