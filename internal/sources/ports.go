// Package sources defines where purchase transactions come from.
package sources

import (
	"context"

	"rewards/internal/core"
)

// Ports for transaction backends.
type (
	// TransactionProvider returns a snapshot of every known transaction.
	// Callers own the returned slice.
	TransactionProvider interface {
		FetchTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// TransactionWriter stores one transaction, ignoring duplicates by
	// transaction ID. It reports whether the transaction was new.
	TransactionWriter interface {
		SaveTransaction(ctx context.Context, tx core.Transaction) (bool, error)
	}

	// HealthChecker is implemented by backends with a reachable dependency.
	HealthChecker interface {
		Ping(ctx context.Context) error
	}
)
