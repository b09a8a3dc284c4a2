package report

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards/internal/core"
)

func tx(id, customer, name, date, price string) core.Transaction {
	t := core.Transaction{
		TransactionID: id,
		CustomerID:    customer,
		CustomerName:  name,
		Price:         core.ParsePrice(price),
	}
	if d, err := core.ParseDate(date); err == nil {
		t.PurchaseDate = d
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFilterByDateRange_ScenarioC(t *testing.T) {
	txs := []core.Transaction{
		tx("T1", "A", "Ann", "2023-12-01", "10"),
		tx("T2", "A", "Ann", "2024-01-15", "10"),
		tx("T3", "A", "Ann", "2024-02-20", "10"),
	}

	got := FilterByDateRange(txs, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))

	require.Len(t, got, 1)
	assert.Equal(t, "T2", got[0].TransactionID)
}

func TestFilterByDateRange_Boundaries(t *testing.T) {
	txs := []core.Transaction{
		tx("before", "A", "Ann", "2024-01-09T23:59:59Z", "1"),
		tx("start", "A", "Ann", "2024-01-10T00:00:00Z", "1"),
		tx("mid", "A", "Ann", "2024-01-12", "1"),
		tx("end", "A", "Ann", "2024-01-20T23:59:59Z", "1"),
		tx("after", "A", "Ann", "2024-01-21T00:00:00Z", "1"),
		tx("invalid", "A", "Ann", "garbage", "1"),
	}

	got := FilterByDateRange(txs, core.NewDate(2024, 1, 10), core.NewDate(2024, 1, 20))

	ids := make([]string, 0, len(got))
	for _, g := range got {
		ids = append(ids, g.TransactionID)
	}
	assert.Equal(t, []string{"start", "mid", "end"}, ids)
}

func TestFilterByDateRange_SingleDay(t *testing.T) {
	txs := []core.Transaction{
		tx("T1", "A", "Ann", "2024-03-05T08:00:00Z", "1"),
		tx("T2", "B", "Bob", "2024-03-05", "1"),
		tx("T3", "B", "Bob", "2024-03-06", "1"),
	}

	got := FilterByDateRange(txs, core.NewDate(2024, 3, 5), core.NewDate(2024, 3, 5))

	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].TransactionID)
	assert.Equal(t, "T2", got[1].TransactionID)
}

func TestFilterByDateRange_PassThrough(t *testing.T) {
	txs := []core.Transaction{
		tx("T1", "A", "Ann", "2024-03-05", "1"),
		tx("T2", "A", "Ann", "not-a-date", "1"),
	}

	assert.Equal(t, txs, FilterByDateRange(txs, core.Date{}, core.Date{}))
	assert.Equal(t, txs, FilterByDateRange(txs, core.NewDate(2024, 1, 1), core.Date{}))
	assert.Equal(t, txs, FilterByDateRange(txs, core.Date{}, core.NewDate(2024, 1, 1)))
}

func TestFilterByDateRange_InvertedRangeIsEmpty(t *testing.T) {
	txs := []core.Transaction{tx("T1", "A", "Ann", "2024-03-05", "1")}

	got := FilterByDateRange(txs, core.NewDate(2024, 3, 6), core.NewDate(2024, 3, 4))

	assert.Empty(t, got)
}

func TestGroupByCustomer(t *testing.T) {
	txs := []core.Transaction{
		tx("T1", "B", "Bob", "2024-01-01", "10"),
		tx("T2", "A", "Ann", "2024-01-02", "20"),
		tx("T3", "B", "Robert", "2024-01-03", "30"),
		tx("T4", "C", "Cid", "2024-01-04", "40"),
	}

	groups := GroupByCustomer(txs)

	assert.Equal(t, []string{"B", "A", "C"}, groups.Keys())
	assert.Equal(t, 3, groups.Len())

	b, ok := groups.Get("B")
	require.True(t, ok)
	assert.Equal(t, "Bob", b.CustomerName, "first seen name wins")
	require.Len(t, b.Transactions, 2)
	assert.Equal(t, "T1", b.Transactions[0].TransactionID)
	assert.Equal(t, "T3", b.Transactions[1].TransactionID)

	_, ok = groups.Get("Z")
	assert.False(t, ok)
}

func TestGroupByCustomer_Empty(t *testing.T) {
	groups := GroupByCustomer(nil)

	assert.Equal(t, 0, groups.Len())
	assert.Empty(t, groups.Groups())
	assert.Empty(t, AllTotalRewards(groups))
	assert.Empty(t, AllMonthlyRewards(groups))
}

func TestGroupByCustomer_PartitionsEveryTransaction(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	txs := make([]core.Transaction, 0, 200)
	distinct := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		c := fmt.Sprintf("C%d", rng.Intn(15))
		distinct[c] = struct{}{}
		txs = append(txs, tx(fmt.Sprintf("T%d", i), c, "name", "2024-01-01", "1"))
	}

	groups := GroupByCustomer(txs)

	assert.Equal(t, len(distinct), groups.Len())
	total := 0
	for _, g := range groups.Groups() {
		for _, tr := range g.Transactions {
			assert.Equal(t, g.CustomerID, tr.CustomerID)
		}
		total += len(g.Transactions)
	}
	assert.Equal(t, len(txs), total)
}

func TestMonthlyRewards_ScenarioB(t *testing.T) {
	groups := GroupByCustomer([]core.Transaction{
		tx("T1", "A", "Ann", "2023-12-03", "120"),
		tx("T2", "A", "Ann", "2023-12-20", "75"),
	})

	monthly := AllMonthlyRewards(groups)

	require.Len(t, monthly, 1)
	m := monthly[0]
	assert.Equal(t, "A", m.CustomerID)
	assert.Equal(t, "Ann", m.CustomerName)
	assert.Equal(t, 2023, m.Year)
	assert.Equal(t, 11, m.Month)
	assert.Equal(t, "December", m.MonthName)
	assert.Equal(t, int64(115), m.RewardPoints)
	assert.True(t, m.TotalAmountSpent.Equal(dec("195")), "spent %s", m.TotalAmountSpent)
}

func TestMonthlyRewardsForCustomer_SplitsByYearAndMonth(t *testing.T) {
	got := MonthlyRewardsForCustomer([]core.Transaction{
		tx("T1", "A", "Ann", "2024-01-10", "120"),
		tx("T2", "A", "Ann", "2023-01-10", "75"),
		tx("T3", "A", "Ann", "2024-01-31", "100"),
		tx("T4", "A", "Ann", "2024-02-01", "51"),
	})

	require.Len(t, got, 3)
	assert.Equal(t, []int{2024, 2023, 2024}, []int{got[0].Year, got[1].Year, got[2].Year})
	assert.Equal(t, []int{0, 0, 1}, []int{got[0].Month, got[1].Month, got[2].Month})
	assert.Equal(t, []int64{140, 25, 1}, []int64{got[0].RewardPoints, got[1].RewardPoints, got[2].RewardPoints})
	assert.Empty(t, got[0].CustomerID)
}

func TestTotalRewards_ScenarioA(t *testing.T) {
	a := tx("T1", "A", "Ann", "2024-01-01", "100")
	withNull := tx("T2", "A", "Ann", "2024-01-02", "")
	withMissing := core.Transaction{TransactionID: "T3", CustomerID: "A", CustomerName: "Ann", PurchaseDate: core.NewDate(2024, 1, 3)}

	totals := AllTotalRewards(GroupByCustomer([]core.Transaction{a, withNull, withMissing}))

	require.Len(t, totals, 1)
	assert.Equal(t, int64(50), totals[0].RewardPoints)
	assert.True(t, totals[0].TotalAmountSpent.Equal(dec("100")), "spent %s", totals[0].TotalAmountSpent)
}

func TestTotalRewards_ScenarioD(t *testing.T) {
	totals := AllTotalRewards(GroupByCustomer([]core.Transaction{
		tx("T1", "A", "Ann", "2024-01-01", "1000"),
		tx("T2", "B", "Bob", "2024-01-01", "120.99"),
	}))

	require.Len(t, totals, 2)
	assert.Equal(t, int64(1850), totals[0].RewardPoints)
	assert.Equal(t, int64(91), totals[1].RewardPoints)
	assert.True(t, totals[1].TotalAmountSpent.Equal(dec("120.99")))
}

func randomTransactions(seed int64, n int) []core.Transaction {
	rng := rand.New(rand.NewSource(seed))
	out := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		date := fmt.Sprintf("20%02d-%02d-%02d", 22+rng.Intn(3), 1+rng.Intn(12), 1+rng.Intn(28))
		price := fmt.Sprintf("%d.%02d", rng.Intn(400), rng.Intn(100))
		if rng.Intn(10) == 0 {
			price = ""
		}
		if rng.Intn(25) == 0 {
			date = "bad"
		}
		c := fmt.Sprintf("C%d", rng.Intn(8))
		out = append(out, tx(fmt.Sprintf("T%d", i), c, "Customer "+c, date, price))
	}
	return out
}

func TestMonthlyAndTotalAgree(t *testing.T) {
	ranges := []core.DateRange{
		{},
		{From: core.NewDate(2023, 3, 1), To: core.NewDate(2023, 9, 30)},
		{From: core.NewDate(2022, 1, 1), To: core.NewDate(2024, 12, 31)},
	}
	for i, r := range ranges {
		t.Run(fmt.Sprintf("range_%d", i), func(t *testing.T) {
			rep := Assemble(randomTransactions(int64(i+1), 300), r)

			points := map[string]int64{}
			spent := map[string]decimal.Decimal{}
			for _, m := range rep.Monthly {
				points[m.CustomerID] += m.RewardPoints
				spent[m.CustomerID] = spent[m.CustomerID].Add(m.TotalAmountSpent)
			}
			require.Len(t, points, len(rep.Totals))
			for _, total := range rep.Totals {
				assert.Equal(t, total.RewardPoints, points[total.CustomerID], total.CustomerID)
				assert.True(t, total.TotalAmountSpent.Equal(spent[total.CustomerID]), total.CustomerID)
				assert.GreaterOrEqual(t, total.RewardPoints, int64(0))
			}
		})
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	txs := randomTransactions(42, 150)
	r := core.DateRange{From: core.NewDate(2023, 1, 1), To: core.NewDate(2023, 12, 31)}

	first := Assemble(txs, r)
	second := Assemble(txs, r)

	assert.Equal(t, first, second)
}

func TestAssemble_FilteredSubset(t *testing.T) {
	txs := randomTransactions(3, 200)
	r := core.DateRange{From: core.NewDate(2023, 5, 1), To: core.NewDate(2023, 6, 15)}

	rep := Assemble(txs, r)

	start, end := r.From.StartOfDay(), r.To.EndOfDay()
	for _, f := range rep.Transactions {
		assert.False(t, f.PurchaseDate.Before(start), f.TransactionID)
		assert.False(t, f.PurchaseDate.After(end), f.TransactionID)
	}
	assert.LessOrEqual(t, len(rep.Transactions), len(txs))
	for _, m := range rep.Monthly {
		assert.Contains(t, []int{4, 5}, m.Month)
		assert.Equal(t, 2023, m.Year)
	}
}
