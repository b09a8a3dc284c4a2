package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rewards/internal/config"
	"rewards/internal/core"
	"rewards/internal/log"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory with seed", Config{Type: MemoryBackend}, false},
		{"unknown type", Config{Type: "postgres"}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sheets without id", Config{Type: SheetsBackend, GoogleServiceAccountJSON: "{}"}, true},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"}, true},
		{"sheets", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc", GoogleServiceAccountFile: "sa.json"}, false},
		{"http without url", Config{Type: HTTPBackend}, true},
		{"http", Config{Type: HTTPBackend, TransactionsURL: "http://localhost/mockData.json"}, false},
		{"negative ttl", Config{Type: MemoryBackend, CacheTTL: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:      config.BackendSQLite,
		SQLiteDBPath:     "/tmp/r.db",
		ProviderCacheTTL: time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/r.db" || cfg.CacheTTL != time.Minute {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	res, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if res.Writer == nil {
		t.Fatal("memory backend should be writable")
	}
	txs, err := res.Provider.FetchTransactions(context.Background())
	if err != nil || len(txs) == 0 {
		t.Fatalf("expected seeded transactions, got %d (%v)", len(txs), err)
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	ctx := context.Background()
	inserted, err := res.Writer.SaveTransaction(ctx, core.Transaction{
		TransactionID: "T1",
		CustomerID:    "C1",
		PurchaseDate:  core.NewDate(2024, 3, 1),
		Price:         core.ParsePrice("80"),
	})
	if err != nil || !inserted {
		t.Fatalf("SaveTransaction = %v, %v", inserted, err)
	}

	txs, err := res.Provider.FetchTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].TransactionID != "T1" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
	if err := res.Provider.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestCreateBackend_HTTPIsReadOnly(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:            HTTPBackend,
		TransactionsURL: "http://127.0.0.1:1/mockData.json",
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if res.Writer != nil {
		t.Fatal("http backend should not be writable")
	}
	if res.Close() != nil {
		t.Fatal("Close without cleanup should be a no-op")
	}
}

func TestCreateBackend_MissingFile(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:             MemoryBackend,
		TransactionsFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	if err == nil {
		t.Fatal("expected an error for a missing transactions file")
	}
}
