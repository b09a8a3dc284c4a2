package google

import (
	"fmt"
	"math"
	"strings"

	"rewards/internal/core"
)

type column int

const (
	colTransactionID column = iota
	colCustomerID
	colCustomerName
	colPurchaseDate
	colProduct
	colPrice
	numColumns
)

// Header aliases, compared after lowercasing and dropping spaces,
// underscores and dashes.
var headerAliases = map[string]column{
	"transactionid":    colTransactionID,
	"id":               colTransactionID,
	"customerid":       colCustomerID,
	"customer":         colCustomerID,
	"customername":     colCustomerName,
	"name":             colCustomerName,
	"purchasedate":     colPurchaseDate,
	"date":             colPurchaseDate,
	"productpurchased": colProduct,
	"product":          colProduct,
	"price":            colPrice,
	"amount":           colPrice,
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// headerIndex maps each column to its position in the header row. It
// returns false when the row does not look like a header, in which case
// the default column order applies.
func headerIndex(row []string) ([numColumns]int, bool) {
	var idx [numColumns]int
	for i := range idx {
		idx[i] = -1
	}
	found := 0
	for pos, cell := range row {
		col, ok := headerAliases[normalizeHeader(cell)]
		if !ok || idx[col] >= 0 {
			continue
		}
		idx[col] = pos
		found++
	}
	if found < 2 || idx[colCustomerID] < 0 {
		for i := range idx {
			idx[i] = i
		}
		return idx, false
	}
	return idx, true
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return fmt.Sprintf("%.0f", x)
		}
		return fmt.Sprint(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func cellPrice(v any) core.Price {
	switch x := v.(type) {
	case float64:
		return core.NewPriceFromFloat(x)
	case string:
		return core.ParsePrice(x)
	default:
		return core.Price{}
	}
}

func at(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

// parseRows converts sheet values into transactions. Rows with no
// transaction or customer ID are skipped and counted. Malformed dates and
// prices are kept as absent values.
func parseRows(values [][]any) ([]core.Transaction, int) {
	out := []core.Transaction{}
	if len(values) == 0 {
		return out, 0
	}

	first := make([]string, len(values[0]))
	for i, v := range values[0] {
		first[i] = cellString(v)
	}
	idx, hasHeader := headerIndex(first)
	rows := values
	if hasHeader {
		rows = values[1:]
	}

	skipped := 0
	for _, row := range rows {
		tx := core.Transaction{
			TransactionID:    cellString(at(row, idx[colTransactionID])),
			CustomerID:       cellString(at(row, idx[colCustomerID])),
			CustomerName:     cellString(at(row, idx[colCustomerName])),
			ProductPurchased: cellString(at(row, idx[colProduct])),
			Price:            cellPrice(at(row, idx[colPrice])),
		}
		if d, err := core.ParseDate(cellString(at(row, idx[colPurchaseDate]))); err == nil {
			tx.PurchaseDate = d
		}
		if tx.TransactionID == "" && tx.CustomerID == "" {
			skipped++
			continue
		}
		out = append(out, tx)
	}
	return out, skipped
}
