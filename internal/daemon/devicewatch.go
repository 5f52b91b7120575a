package daemon

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/pilebones/go-udev/netlink"

	"lightbox/internal/catalog"
	"lightbox/internal/config"
	"lightbox/internal/logging"
)

// deviceWatcher listens for udev netlink events and rescans the catalog
// when removable block storage appears or disappears. A settle delay
// coalesces the event bursts a single attach produces and gives the kernel
// time to finish mounting before the scan walks the media store.
type deviceWatcher struct {
	cfg    *config.Config
	logger *slog.Logger
	rescan func(ctx context.Context) (catalog.ScanSummary, error)
	settle time.Duration

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newDeviceWatcher(
	cfg *config.Config,
	logger *slog.Logger,
	rescan func(ctx context.Context) (catalog.ScanSummary, error),
) *deviceWatcher {
	if cfg == nil || !cfg.Catalog.WatchDevices {
		return nil
	}

	settle := time.Duration(cfg.Catalog.SettleSeconds) * time.Second
	if settle <= 0 {
		settle = 2 * time.Second
	}

	return &deviceWatcher{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "devicewatch"),
		rescan: rescan,
		settle: settle,
	}
}

// Start begins listening for udev netlink events.
func (w *deviceWatcher) Start(ctx context.Context) {
	if w == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		w.logger.Warn("failed to connect to netlink socket; catalog rescans require manual triggers",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the daemon has permission to access netlink sockets"),
			logging.String(logging.FieldImpact, "automatic rescan on device attach unavailable"),
		)
		return
	}

	w.conn = conn
	w.quit = make(chan struct{})
	w.running = true

	quit := w.quit
	go w.watchLoop(ctx, quit)

	w.logger.Info("device watcher started",
		logging.String(logging.FieldEventType, "devicewatch_started"))
}

// Stop shuts down the device watcher.
func (w *deviceWatcher) Stop() {
	if w == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	if w.quit != nil {
		close(w.quit)
		w.quit = nil
	}
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	w.running = false

	w.logger.Info("device watcher stopped",
		logging.String(logging.FieldEventType, "devicewatch_stopped"))
}

// Running reports whether the device watcher is active.
func (w *deviceWatcher) Running() bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *deviceWatcher) watchLoop(ctx context.Context, quit <-chan struct{}) {
	events := make(chan netlink.UEvent)
	errs := make(chan error)

	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(events, errs, buildDeviceMatcher())

	var settleTimer *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-events:
			w.logger.Debug("block device event",
				logging.String("action", string(uevent.Action)),
				logging.String("device", deviceName(uevent)))
			if settleTimer == nil {
				settleTimer = time.NewTimer(w.settle)
			} else {
				if !settleTimer.Stop() {
					select {
					case <-settleTimer.C:
					default:
					}
				}
				settleTimer.Reset(w.settle)
			}
			settleC = settleTimer.C
		case <-settleC:
			settleC = nil
			w.triggerRescan(ctx)
		case err := <-errs:
			w.logger.Warn("device watcher error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "devicewatch_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "catalog may miss attached devices"),
			)
		}
	}
}

func (w *deviceWatcher) triggerRescan(ctx context.Context) {
	summary, err := w.rescan(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.Warn("rescan after device event failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "catalog_scan_failed"))
		}
		return
	}
	w.logger.Info("catalog rescanned after device event",
		logging.String(logging.FieldEventType, "catalog_scan"),
		logging.Int("image_count", summary.Images),
		logging.Int("video_count", summary.Videos),
		logging.Int("skipped_count", summary.Skipped),
		logging.Duration("took", summary.Took))
}

// buildDeviceMatcher matches block device attach and detach events.
func buildDeviceMatcher() netlink.Matcher {
	action := "add|remove|change"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "block",
		},
	})
	return rules
}

func deviceName(uevent netlink.UEvent) string {
	if name, ok := uevent.Env["DEVNAME"]; ok {
		return strings.TrimSpace(name)
	}
	return uevent.KObj
}
