// Command rewards-import loads a JSON or YAML transaction file into the
// SQLite store, or publishes it to the ingest queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"rewards/internal/amqp"
	"rewards/internal/cli"
	"rewards/internal/core"
	"rewards/internal/log"
	"rewards/internal/sources/memory"
)

func main() {
	file := flag.String("file", "", "transactions file (.json, .yaml or .yml)")
	target := flag.String("target", "sqlite", "where to load the transactions: sqlite or amqp")
	source := flag.String("source", "import", "source name recorded on published messages")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: rewards-import -file transactions.json [-target sqlite|amqp]")
		os.Exit(2)
	}

	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	txs, err := memory.LoadFile(*file)
	if err != nil {
		logger.Error("Failed to read transactions", log.FieldError, err, "file", *file)
		os.Exit(1)
	}
	assignMissingIDs(txs)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch *target {
	case "sqlite":
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()

		inserted, err := repo.SaveTransactions(ctx, txs)
		if err != nil {
			logger.Error("Import failed", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Import complete", "read", len(txs), "inserted", inserted, "path", cfg.SQLiteDBPath)

	case "amqp":
		if cfg.AMQPURL == "" {
			logger.Error("AMQP_URL is required for -target amqp")
			os.Exit(1)
		}
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		published := 0
		for _, tx := range txs {
			if err := client.PublishTransaction(ctx, tx, *source); err != nil {
				logger.Error("Publish failed", log.FieldError, err, log.FieldTransaction, tx.TransactionID)
				continue
			}
			published++
		}
		logger.Info("Publish complete", "read", len(txs), "published", published)
		if published < len(txs) {
			os.Exit(1)
		}

	default:
		logger.Error("Unknown import target", "target", *target)
		os.Exit(2)
	}
}

// assignMissingIDs gives every transaction without an ID a random one so it
// can be stored and deduplicated.
func assignMissingIDs(txs []core.Transaction) {
	for i := range txs {
		if txs[i].TransactionID == "" {
			txs[i].TransactionID = uuid.NewString()
		}
	}
}
