package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rewards/internal/core"
)

func TestStore_FetchReturnsCopy(t *testing.T) {
	s := New([]core.Transaction{{TransactionID: "T1", CustomerID: "C1", CustomerName: "Ann"}})

	first, err := s.FetchTransactions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	first[0].CustomerName = "mutated"

	second, _ := s.FetchTransactions(context.Background())
	if second[0].CustomerName != "Ann" {
		t.Fatalf("store was mutated through a fetched snapshot: %q", second[0].CustomerName)
	}
}

func TestStore_EmptyFetchIsNotNil(t *testing.T) {
	got, err := New(nil).FetchTransactions(context.Background())
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("unexpected result: %v, %v", got, err)
	}
}

func TestStore_SaveTransaction(t *testing.T) {
	s := New([]core.Transaction{{TransactionID: "T1", CustomerID: "C1"}})
	ctx := context.Background()

	cases := []struct {
		name    string
		tx      core.Transaction
		want    bool
		wantErr bool
	}{
		{"new", core.Transaction{TransactionID: "T2", CustomerID: "C1"}, true, false},
		{"duplicate of seed", core.Transaction{TransactionID: "T1", CustomerID: "C1"}, false, false},
		{"duplicate of saved", core.Transaction{TransactionID: "T2", CustomerID: "C9"}, false, false},
		{"missing customer", core.Transaction{TransactionID: "T3"}, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.SaveTransaction(ctx, tc.tx)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("inserted = %v, want %v", got, tc.want)
			}
		})
	}

	all, _ := s.FetchTransactions(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(all))
	}
}

func TestNewSeeded(t *testing.T) {
	txs, err := NewSeeded().FetchTransactions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) == 0 {
		t.Fatal("seed is empty")
	}
	for _, tx := range txs {
		if tx.Validate() != nil || tx.PurchaseDate.IsEmpty() {
			t.Fatalf("bad seed record: %+v", tx)
		}
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	jsonPath := mustWrite("tx.json", `[
		{"transactionId":"T1","customerId":"C1","customerName":"Ann","purchaseDate":"2024-01-15","productPurchased":"Hat","price":120},
		{"transactionId":"T2","customerId":"C1","customerName":"Ann","purchaseDate":"nope","price":"abc"}
	]`)
	yamlPath := mustWrite("tx.yaml", `
- transactionId: T1
  customerId: C1
  customerName: Ann
  purchaseDate: 2024-01-15
  price: 120.5
- transactionId: T2
  customerId: C2
  price: ~
`)
	badPath := mustWrite("bad.json", `{"not":"an array"}`)

	s, err := NewFromFile(jsonPath)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	txs, _ := s.FetchTransactions(context.Background())
	if len(txs) != 2 || core.CalculateRewardPoints(txs[0].Price) != 90 {
		t.Fatalf("unexpected json data: %+v", txs)
	}
	if !txs[1].PurchaseDate.IsEmpty() || txs[1].Price.Valid {
		t.Fatalf("malformed fields should decode as absent: %+v", txs[1])
	}

	s, err = NewFromFile(yamlPath)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	txs, _ = s.FetchTransactions(context.Background())
	if len(txs) != 2 || txs[0].Price.String() != "120.5" || txs[1].Price.Valid {
		t.Fatalf("unexpected yaml data: %+v", txs)
	}
	if !txs[0].PurchaseDate.Equal(core.NewDate(2024, 1, 15).Time) {
		t.Fatalf("yaml date: %v", txs[0].PurchaseDate)
	}

	if _, err := NewFromFile(badPath); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := NewFromFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected read error")
	}
	if s, err := NewFromFile(""); err != nil || s == nil {
		t.Fatalf("empty path should use the seed: %v", err)
	}
}
