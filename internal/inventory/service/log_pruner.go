package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pruner is the part of a scan log store the retention loop needs.
type Pruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// LogPruner deletes scan log entries older than the retention period on a
// fixed interval. A retention of 0 disables it.
type LogPruner struct {
	store     Pruner
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type PrunerConfig struct {
	// RetentionDays is how many days of scan history to keep; 0 keeps all.
	RetentionDays int

	// IntervalHours is how often the pruner runs. Defaults to 6.
	IntervalHours int
}

// NewLogPruner creates a pruner but does not start it.
func NewLogPruner(s Pruner, cfg PrunerConfig, logger *slog.Logger) *LogPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &LogPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Start prunes once immediately and then on every interval until ctx is
// cancelled or Stop is called. Starting twice is a no-op.
func (p *LogPruner) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return
	}
	p.done = make(chan struct{})

	if p.retention <= 0 {
		p.logger.Info("scan log pruner disabled", "retention_days", 0)
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	go p.loop(ctx, p.done)

	p.logger.Info("scan log pruner started",
		"retention_days", int(p.retention.Hours()/24),
		"interval", p.interval.String())
}

// Stop signals the loop to exit and waits for it. Safe to call repeatedly
// and before Start.
func (p *LogPruner) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (p *LogPruner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.PruneOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PruneOnce(ctx)
		}
	}
}

// PruneOnce runs a single retention pass and returns the rows deleted.
func (p *LogPruner) PruneOnce(ctx context.Context) int64 {
	if p.retention <= 0 {
		return 0
	}
	cutoff := p.now().UTC().Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("scan log prune failed", "err", err)
		return 0
	}
	if deleted > 0 {
		p.logger.Info("scan log pruned", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
	return deleted
}
