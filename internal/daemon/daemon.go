package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lightbox/internal/catalog"
	"lightbox/internal/composer"
	"lightbox/internal/config"
	"lightbox/internal/deps"
	"lightbox/internal/logging"
	"lightbox/internal/notifications"
	"lightbox/internal/preflight"
	"lightbox/internal/processing"
	"lightbox/internal/publish"
	"lightbox/internal/session"
)

// Daemon coordinates the background services and enforces single-instance
// execution via a lock file in the state directory.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *session.Store
	library  *catalog.Catalog
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	api     *apiServer
	watcher *deviceWatcher

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	SessionStats map[session.Status]int
	Catalog      catalog.Stats
	Dependencies []deps.Status
	Checks       []preflight.Result
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *session.Store, library *catalog.Catalog, logger *slog.Logger, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || store == nil || library == nil {
		return nil, errors.New("daemon requires config, session store, and catalog")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewNoop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		library:  library,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.watcher = newDeviceWatcher(cfg, logger, d.RescanCatalog)

	apiSrv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, fmt.Errorf("configure api server: %w", err)
	}
	d.api = apiSrv
	return d, nil
}

// Start acquires the daemon lock, reclaims interrupted publishes, and
// launches the background services.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lightbox daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if reset, err := d.store.ResetStuckPublishing(d.ctx); err != nil {
		d.logger.Warn("failed to reset interrupted publishes",
			logging.Error(err),
			logging.String(logging.FieldEventType, "publish_reset_failed"))
	} else if reset > 0 {
		d.logger.Info("interrupted publishes returned to draft",
			logging.String(logging.FieldEventType, "publish_reset"),
			logging.Int64("session_count", reset))
	}

	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}
	d.watcher.Start(d.ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if _, err := d.library.Scan(d.ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("initial catalog scan failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "catalog_scan_failed"),
				logging.String(logging.FieldErrorHint, "verify the media store directory is mounted and readable"))
		}
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.maintenanceLoop(d.ctx)
	}()

	d.running.Store(true)
	d.logger.Info("lightbox daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.watcher.Stop()
	d.api.stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("lightbox daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon services are active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		Catalog:      d.library.Stats(),
		Dependencies: preflight.CheckSystemDeps(d.cfg),
		Checks:       preflight.RunAll(ctx, d.cfg),
	}
	if stats, err := d.store.Stats(ctx); err == nil {
		status.SessionStats = stats
	}
	return status
}

// ListSessions returns sessions filtered by optional statuses.
func (d *Daemon) ListSessions(ctx context.Context, statuses []session.Status) ([]*session.Session, error) {
	return d.store.List(ctx, statuses...)
}

// GetSession fetches a single session. A missing session returns (nil, nil).
func (d *Daemon) GetSession(ctx context.Context, id int64) (*session.Session, error) {
	return d.store.GetByID(ctx, id)
}

// DiscardSession removes a session and its staging directory. Sessions
// with an in-flight publish cannot be discarded.
func (d *Daemon) DiscardSession(ctx context.Context, id int64) (bool, error) {
	sess, err := d.store.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}
	if sess.IsPublishing() {
		return false, composer.ErrPublishInFlight
	}
	if staging := sess.StagingRoot(d.cfg.Paths.StagingDir); staging != "" {
		if err := os.RemoveAll(staging); err != nil {
			d.logger.Warn("failed to remove staging directory",
				logging.Error(err),
				logging.Int64(logging.FieldSessionID, sess.ID),
				logging.String("staging", staging))
		}
	}
	return d.store.Remove(ctx, id)
}

// ClearPublished removes published sessions.
func (d *Daemon) ClearPublished(ctx context.Context) (int64, error) {
	return d.store.ClearPublished(ctx)
}

// ResetStuck returns sessions stuck in publishing back to editable drafts.
func (d *Daemon) ResetStuck(ctx context.Context) (int64, error) {
	return d.store.ResetStuckPublishing(ctx)
}

// SessionHealth returns aggregate session diagnostics.
func (d *Daemon) SessionHealth(ctx context.Context) (session.HealthSummary, error) {
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (session.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}

// RescanCatalog walks the media store and refreshes the asset index.
func (d *Daemon) RescanCatalog(ctx context.Context) (catalog.ScanSummary, error) {
	return d.library.Scan(ctx)
}

// CatalogPage returns a page of indexed assets.
func (d *Daemon) CatalogPage(mediaType catalog.MediaType, cursor string, pageSize int) catalog.Page {
	return d.library.List(mediaType, cursor, pageSize)
}

// CatalogStats reports counts from the last completed scan.
func (d *Daemon) CatalogStats() catalog.Stats {
	return d.library.Stats()
}

// ImportAsset copies an outside file into the media store and indexes it.
func (d *Daemon) ImportAsset(ctx context.Context, sourcePath string) (catalog.Asset, error) {
	return d.library.Import(ctx, sourcePath)
}

// Publish starts the publish sequence for a draft session. Validation that
// needs no collaborator runs synchronously; uploads and post creation run in
// the background with progress persisted on the session row.
func (d *Daemon) Publish(ctx context.Context, id int64) error {
	if !d.running.Load() || d.ctx == nil {
		return errors.New("daemon is not running")
	}
	sess, err := d.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session %d not found", id)
	}
	if sess.IsPublishing() {
		return composer.ErrPublishInFlight
	}
	if !sess.IsEditable() {
		return fmt.Errorf("session %d is already published", id)
	}

	comp, err := d.composerFor(sess)
	if err != nil {
		return err
	}

	correlationID := uuid.NewString()
	logger := d.logger.With(
		logging.Int64(logging.FieldSessionID, sess.ID),
		logging.String(logging.FieldCorrelationID, correlationID))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		logger.Info("publish requested",
			logging.String(logging.FieldEventType, "publish_requested"))
		if err := comp.Publish(d.ctx); err != nil {
			logger.Warn("publish failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "publish_failed"))
		}
	}()
	return nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

func (d *Daemon) composerFor(sess *session.Session) (*composer.Composer, error) {
	pipeline := processing.New(d.cfg, d.logger)
	orchestrator := publish.New(d.cfg, d.store, d.logger, d.notifier)
	return composer.New(d.cfg, d.store, d.library, pipeline, orchestrator, d.logger, sess)
}
