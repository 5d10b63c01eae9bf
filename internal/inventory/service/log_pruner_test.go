package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/store/memory"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLogPruner_DisabledWhenRetentionZero(t *testing.T) {
	p := NewLogPruner(memory.New(), PrunerConfig{RetentionDays: 0, IntervalHours: 1}, silentLogger())

	p.Start(context.Background())
	p.Stop()

	if n := p.PruneOnce(context.Background()); n != 0 {
		t.Errorf("expected disabled pruner to delete nothing, got %d", n)
	}
}

func TestLogPruner_PrunesOldEntries(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, ts := range []time.Time{now.AddDate(0, 0, -40), now.AddDate(0, 0, -1)} {
		if _, err := ms.AppendScan(ctx, types.ScanLog{SerialNumber: "OLV-001-0001", Timestamp: ts.Format(time.RFC3339Nano)}); err != nil {
			t.Fatalf("AppendScan: %v", err)
		}
	}

	p := NewLogPruner(ms, PrunerConfig{RetentionDays: 30}, silentLogger())
	p.now = func() time.Time { return now }

	if n := p.PruneOnce(ctx); n != 1 {
		t.Errorf("expected 1 pruned, got %d", n)
	}
	if n := p.PruneOnce(ctx); n != 0 {
		t.Errorf("expected second pass to prune nothing, got %d", n)
	}
	logs, _ := ms.ListScans(ctx)
	if len(logs) != 1 {
		t.Errorf("expected recent entry to survive, got %d entries", len(logs))
	}
}

func TestLogPruner_StopIsIdempotent(t *testing.T) {
	p := NewLogPruner(memory.New(), PrunerConfig{RetentionDays: 30, IntervalHours: 1}, silentLogger())

	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	p.Start(ctx)

	cancel()
	p.Stop()
	p.Stop()
}
