package daemon

import (
	"context"
	"testing"

	"lightbox/internal/catalog"
	"lightbox/internal/logging"
	"lightbox/internal/testsupport"
)

func TestNewDeviceWatcherDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Catalog.WatchDevices = false

	w := newDeviceWatcher(cfg, logging.NewNop(), func(context.Context) (catalog.ScanSummary, error) {
		return catalog.ScanSummary{}, nil
	})
	if w != nil {
		t.Fatal("expected nil watcher when device watching is disabled")
	}

	// Nil receivers are safe so the daemon can call through unconditionally.
	w.Start(context.Background())
	w.Stop()
	if w.Running() {
		t.Fatal("nil watcher must never report running")
	}
}

func TestNewDeviceWatcherSettleDefault(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Catalog.WatchDevices = true
	cfg.Catalog.SettleSeconds = 0

	w := newDeviceWatcher(cfg, logging.NewNop(), func(context.Context) (catalog.ScanSummary, error) {
		return catalog.ScanSummary{}, nil
	})
	if w == nil {
		t.Fatal("expected watcher when device watching is enabled")
	}
	if w.settle <= 0 {
		t.Fatalf("expected positive settle duration, got %v", w.settle)
	}
}
