package bookings

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"showtix/pkg/logger"
)

// JobConfig contains configuration for the expiry reclaim job
type JobConfig struct {
	// Interval between sweeps.
	Interval time.Duration
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		Interval: 1 * time.Minute,
	}
}

// JobProcessor runs the expiry reclaim sweep on a fixed interval. The sweep
// is stateless between ticks: all state lives in the store, so a missed or
// failed tick only delays reclamation.
type JobProcessor struct {
	service  Service
	config   *JobConfig
	done     chan struct{}
	stopOnce sync.Once
	log      *logger.Logger
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(service Service, config *JobConfig) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}

	return &JobProcessor{
		service: service,
		config:  config,
		done:    make(chan struct{}),
		log:     logger.GetDefault(),
	}
}

// Start launches the reclaim loop. The first sweep runs immediately so a
// restart repairs leaked holds without waiting a full interval.
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.run(ctx)
	jp.log.Info("Booking expiry job started", slog.Duration("interval", jp.config.Interval))
}

// Stop stops the reclaim loop. Safe to call more than once.
func (jp *JobProcessor) Stop() {
	jp.stopOnce.Do(func() {
		close(jp.done)
		jp.log.Info("Booking expiry job stopped")
	})
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.config.Interval)
	defer ticker.Stop()

	jp.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			jp.sweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep runs one reclaim pass. Errors are logged and retried next tick,
// never propagated.
func (jp *JobProcessor) sweep(ctx context.Context) {
	reclaimed, err := jp.service.ReclaimExpired(ctx)
	if err != nil {
		jp.log.ErrorContext(ctx, "expiry sweep failed", slog.Any("error", err))
		return
	}

	if len(reclaimed) > 0 {
		jp.log.InfoContext(ctx, "expiry sweep reclaimed bookings", slog.Int("count", len(reclaimed)))
	}
}
