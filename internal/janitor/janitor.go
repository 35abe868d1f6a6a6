// Package janitor runs periodic SQLite housekeeping for the waitlist
// database: truncating the write-ahead log and refreshing planner
// statistics. It runs beside the HTTP server so request paths never pay for
// maintenance work.
package janitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Metric names emitted per cycle.
const (
	CounterCycles             = "janitor_cycles_total"
	CounterErrors             = "janitor_errors_total"
	SummaryCheckpointedFrames = "janitor_checkpointed_frames"
)

// Store abstracts the maintenance operations the Janitor drives.
type Store interface {
	// Checkpoint copies WAL frames into the database file, truncates the
	// log, and returns the number of frames checkpointed.
	Checkpoint(ctx context.Context) (int, error)
	// Optimize refreshes query planner statistics.
	Optimize(ctx context.Context) error
}

// Metrics is the optional sink for cycle metrics; *metrics.Manager satisfies it.
type Metrics interface {
	Inc(name string, delta int64)
	Observe(name string, value int64)
}

// Config holds tunables for the Janitor.
type Config struct {
	Interval time.Duration // how often a cycle begins
	Logger   *slog.Logger  // optional logger (defaults to slog.Default())
}

// Stats is a read-only snapshot of cycle counts.
type Stats struct {
	Cycles              uint64
	Errors              uint64
	Checkpointed        uint64
	CycleLastDurationMS int64
}

// Janitor encapsulates the background maintenance loop.
type Janitor struct {
	store   Store
	metrics Metrics
	cfg     Config

	mu    sync.Mutex
	stats Stats

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// New constructs but does not start a Janitor. m may be nil.
func New(store Store, m Metrics, cfg Config) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Janitor{
		store:   store,
		metrics: m,
		cfg:     cfg,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start launches the loop in a new goroutine. Subsequent calls are no-ops.
func (j *Janitor) Start(ctx context.Context) {
	j.startOnce.Do(func() {
		j.mu.Lock()
		j.started = true
		j.mu.Unlock()
		go j.loop(ctx)
	})
}

// Stop signals the loop to exit and waits for completion. It is safe to
// call without Start and more than once.
func (j *Janitor) Stop() {
	j.mu.Lock()
	started := j.started
	j.mu.Unlock()
	if !started {
		return
	}
	j.stopOnce.Do(func() { close(j.stopCh) })
	<-j.doneCh
}

// Stats returns a copy of the current counters.
func (j *Janitor) Stats() Stats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

func (j *Janitor) loop(ctx context.Context) {
	log := j.cfg.Logger.With("domain", "janitor")
	ticker := time.NewTicker(j.cfg.Interval)
	defer func() {
		ticker.Stop()
		close(j.doneCh)
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info("janitor stop", "reason", "context_cancel")
			return
		case <-j.stopCh:
			log.Info("janitor stop", "reason", "stop_signal")
			return
		case <-ticker.C:
			j.runCycle(ctx)
		}
	}
}

// runCycle performs one checkpoint + optimize pass. Errors are logged and
// counted; the next cycle retries.
func (j *Janitor) runCycle(ctx context.Context) {
	start := time.Now()
	log := j.cfg.Logger.With("domain", "janitor", "action", "cycle")
	var failures uint64
	frames, err := j.store.Checkpoint(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("checkpoint", "error", err)
		failures++
	}
	if err := j.store.Optimize(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("optimize", "error", err)
		failures++
	}
	elapsed := time.Since(start)

	j.mu.Lock()
	j.stats.Cycles++
	j.stats.Errors += failures
	if frames > 0 {
		j.stats.Checkpointed += uint64(frames)
	}
	j.stats.CycleLastDurationMS = elapsed.Milliseconds()
	j.mu.Unlock()

	if j.metrics != nil {
		j.metrics.Inc(CounterCycles, 1)
		if failures > 0 {
			j.metrics.Inc(CounterErrors, int64(failures))
		}
		j.metrics.Observe(SummaryCheckpointedFrames, int64(frames))
	}
	log.Debug("cycle complete", "frames", frames, "errors", failures, "ms", elapsed.Milliseconds())
}
