package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"rewards/internal/core"
	"rewards/internal/log"
	"rewards/internal/report"
	"rewards/internal/sources"
)

// ErrFetchFailed classifies every failure to load transactions from the
// provider. Callers show a single retryable error state for it.
var ErrFetchFailed = errors.New("failed to load transactions")

// ErrNoRange is returned by Retry before any report was requested.
var ErrNoRange = errors.New("no report has been requested yet")

const maxFetchBackoff = 5 * time.Second

// ReportServiceConfig controls how the provider is called.
type ReportServiceConfig struct {
	Retries int           // extra attempts after the first one
	Backoff time.Duration // wait before the first retry, doubled each time
	Timeout time.Duration // per attempt, 0 disables
}

func DefaultReportServiceConfig() ReportServiceConfig {
	return ReportServiceConfig{
		Retries: 2,
		Backoff: 200 * time.Millisecond,
		Timeout: 10 * time.Second,
	}
}

// Snapshot is the outcome of one report run.
type Snapshot struct {
	Seq         uint64
	Range       core.DateRange
	Report      report.Report
	Err         error
	Fetched     int
	Attempts    int
	CompletedAt time.Time
}

// OK reports whether the run produced a report.
func (s Snapshot) OK() bool {
	return s.Err == nil
}

// ReportService fetches transactions and runs the report pipeline over them.
// Runs may overlap; the latest snapshot only moves forward, so a slow run
// that finishes after a newer one is dropped.
type ReportService struct {
	provider sources.TransactionProvider
	config   ReportServiceConfig
	logger   *log.Logger
	events   *log.StructuredLogger

	seq atomic.Uint64

	mu        sync.RWMutex
	latest    *Snapshot
	lastRange *core.DateRange
}

func NewReportService(provider sources.TransactionProvider, config ReportServiceConfig, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Discard()
	}
	if config.Retries < 0 {
		config.Retries = 0
	}
	logger = logger.WithComponent(log.ComponentReport)
	return &ReportService{
		provider: provider,
		config:   config,
		logger:   logger,
		events:   log.NewStructuredLogger(logger),
	}
}

// Run fetches a fresh snapshot from the provider and assembles the report
// for r. Provider failures are wrapped with ErrFetchFailed.
func (s *ReportService) Run(ctx context.Context, r core.DateRange) (Snapshot, error) {
	seq := s.seq.Add(1)
	s.mu.Lock()
	rangeCopy := r
	s.lastRange = &rangeCopy
	s.mu.Unlock()

	start := time.Now()
	txs, attempts, err := s.fetch(ctx, seq)
	if err != nil {
		snap := Snapshot{
			Seq:         seq,
			Range:       r,
			Err:         fmt.Errorf("%w: %w", ErrFetchFailed, err),
			Attempts:    attempts,
			CompletedAt: time.Now(),
		}
		s.apply(snap)
		s.events.LogError(ctx, "Report fetch failed", err, log.ComponentReport, log.OpFetch,
			log.NewFields().WithSeq(seq).WithRange(r.From.String(), r.To.String()))
		return snap, snap.Err
	}

	rep := report.Assemble(txs, r)
	snap := Snapshot{
		Seq:         seq,
		Range:       r,
		Report:      rep,
		Fetched:     len(txs),
		Attempts:    attempts,
		CompletedAt: time.Now(),
	}
	if !s.apply(snap) {
		s.logger.DebugContext(ctx, "Discarding stale report",
			log.FieldSeq, seq, "latest_seq", s.latestSeq())
	}
	s.events.LogReportComputed(ctx, seq, r.From.String(), r.To.String(),
		len(txs), len(rep.Transactions), len(rep.Totals), len(rep.Monthly), time.Since(start))
	return snap, nil
}

// Retry re-runs the report with the most recently requested range.
func (s *ReportService) Retry(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	last := s.lastRange
	s.mu.RUnlock()
	if last == nil {
		return Snapshot{}, ErrNoRange
	}
	return s.Run(ctx, *last)
}

// Latest returns the newest completed snapshot, if any.
func (s *ReportService) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Snapshot{}, false
	}
	return *s.latest, true
}

// LastRange returns the range of the most recent Run call.
func (s *ReportService) LastRange() (core.DateRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRange == nil {
		return core.DateRange{}, false
	}
	return *s.lastRange, true
}

// Ping checks the provider when it supports health checks.
func (s *ReportService) Ping(ctx context.Context) error {
	if hc, ok := s.provider.(sources.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}

func (s *ReportService) apply(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest != nil && s.latest.Seq >= snap.Seq {
		return false
	}
	s.latest = &snap
	return true
}

func (s *ReportService) latestSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return 0
	}
	return s.latest.Seq
}

func (s *ReportService) fetch(ctx context.Context, seq uint64) ([]core.Transaction, int, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= s.config.Retries; attempt++ {
		if attempt > 0 {
			wait := s.backoff(attempt)
			s.logger.WarnContext(ctx, "Retrying transaction fetch",
				log.FieldSeq, seq, log.FieldAttempt, attempt, "backoff", wait, log.FieldError, lastErr)
			select {
			case <-ctx.Done():
				return nil, attempts, ctx.Err()
			case <-time.After(wait):
			}
		}

		attempts++
		txs, err := s.fetchOnce(ctx)
		if err == nil {
			return txs, attempts, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, attempts, ctx.Err()
		}
	}
	return nil, attempts, lastErr
}

func (s *ReportService) fetchOnce(ctx context.Context) ([]core.Transaction, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	return s.provider.FetchTransactions(ctx)
}

func (s *ReportService) backoff(attempt int) time.Duration {
	d := s.config.Backoff
	for i := 1; i < attempt && d < maxFetchBackoff; i++ {
		d *= 2
	}
	if d > maxFetchBackoff {
		d = maxFetchBackoff
	}
	return d
}
