package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"rewards/internal/amqp"
	"rewards/internal/log"
	"rewards/internal/sources"
)

// Stats counts what the worker did with the messages it received.
type Stats struct {
	Stored     int64
	Duplicates int64
	Rejected   int64
	Failed     int64
}

// IngestWorker stores TransactionRecorded messages in a transaction store.
type IngestWorker struct {
	store      sources.TransactionWriter
	logger     *log.Logger
	onIngested func()

	stored     atomic.Int64
	duplicates atomic.Int64
	rejected   atomic.Int64
	failed     atomic.Int64
}

func NewIngestWorker(store sources.TransactionWriter, logger *log.Logger) *IngestWorker {
	return &IngestWorker{
		store:  store,
		logger: logger.WithComponent(log.ComponentIngest),
	}
}

// OnIngested registers fn to run after each newly stored transaction,
// typically to drop a cached snapshot.
func (w *IngestWorker) OnIngested(fn func()) {
	w.onIngested = fn
}

// HandleMessage is an amqp.Handler. Invalid transactions are rejected for
// good; storage failures are returned so the message is redelivered.
func (w *IngestWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	tx := msg.Transaction
	if err := tx.Validate(); err != nil {
		w.rejected.Add(1)
		w.logger.WarnContext(ctx, "Rejecting invalid transaction message",
			"message_id", msg.MessageID,
			log.FieldTransaction, tx.TransactionID,
			log.FieldError, err)
		return amqp.Reject(err)
	}

	inserted, err := w.store.SaveTransaction(ctx, tx)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("store transaction %s: %w", tx.TransactionID, err)
	}
	if !inserted {
		w.duplicates.Add(1)
		w.logger.DebugContext(ctx, "Transaction already stored",
			log.FieldTransaction, tx.TransactionID, "message_id", msg.MessageID)
		return nil
	}

	w.stored.Add(1)
	w.logger.InfoContext(ctx, "Transaction ingested",
		log.FieldTransaction, tx.TransactionID,
		log.FieldCustomerID, tx.CustomerID,
		log.FieldSource, msg.Source)
	if w.onIngested != nil {
		w.onIngested()
	}
	return nil
}

func (w *IngestWorker) Stats() Stats {
	return Stats{
		Stored:     w.stored.Load(),
		Duplicates: w.duplicates.Load(),
		Rejected:   w.rejected.Load(),
		Failed:     w.failed.Load(),
	}
}

// Run consumes from client until ctx is cancelled.
func (w *IngestWorker) Run(ctx context.Context, client *amqp.Client) error {
	w.logger.InfoContext(ctx, "Ingest worker started")
	err := client.ConsumeTransactions(ctx, w.HandleMessage)
	s := w.Stats()
	w.logger.InfoContext(ctx, "Ingest worker stopped",
		"stored", s.Stored, "duplicates", s.Duplicates, "rejected", s.Rejected, "failed", s.Failed)
	return err
}
