package daemon_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lightbox/internal/catalog"
	"lightbox/internal/composer"
	"lightbox/internal/config"
	"lightbox/internal/daemon"
	"lightbox/internal/logging"
	"lightbox/internal/session"
	"lightbox/internal/testsupport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	// Collaborator endpoints stay unset so preflight fails fast without
	// touching the network.
	cfg.Uploader.BaseURL = ""
	cfg.Eligibility.BaseURL = ""
	cfg.Posts.BaseURL = ""
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestDaemon(t *testing.T, cfg *config.Config) (*daemon.Daemon, *session.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	library := catalog.New(cfg, logging.NewNop())
	d, err := daemon.New(cfg, store, library, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testConfig(t)
	d, _ := newTestDaemon(t, cfg)
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Running() {
		t.Fatal("expected daemon to report running")
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonStartResetsInterruptedPublishes(t *testing.T) {
	cfg := testConfig(t)
	d, store := newTestDaemon(t, cfg)
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	sess := testsupport.NewDraft(t, store)
	sess.Mode = session.ModePublishing
	sess.Status = session.StatusPublishing
	if err := store.Update(ctx, sess); err != nil {
		t.Fatal(err)
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	reloaded, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != session.StatusDraft {
		t.Fatalf("expected draft after restart, got %s", reloaded.Status)
	}
	if reloaded.ErrorMessage != session.InterruptedPublishMessage {
		t.Fatalf("unexpected error message %q", reloaded.ErrorMessage)
	}
}

func TestDiscardSessionRemovesStaging(t *testing.T) {
	cfg := testConfig(t)
	d, store := newTestDaemon(t, cfg)
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	sess := testsupport.NewDraft(t, store)
	staging := sess.StagingRoot(cfg.Paths.StagingDir)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staging, "out.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := d.DiscardSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected session to be removed")
	}
	if _, err := os.Stat(staging); !os.IsNotExist(err) {
		t.Fatal("expected staging directory to be removed")
	}
	if reloaded, err := store.GetByID(ctx, sess.ID); err != nil || reloaded != nil {
		t.Fatalf("expected session row gone, got %v/%v", reloaded, err)
	}
}

func TestDiscardSessionBlockedWhilePublishing(t *testing.T) {
	cfg := testConfig(t)
	d, store := newTestDaemon(t, cfg)
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	sess := testsupport.NewDraft(t, store)
	sess.Status = session.StatusPublishing
	if err := store.Update(ctx, sess); err != nil {
		t.Fatal(err)
	}

	if _, err := d.DiscardSession(ctx, sess.ID); !errors.Is(err, composer.ErrPublishInFlight) {
		t.Fatalf("expected ErrPublishInFlight, got %v", err)
	}
}

func TestDiscardSessionMissing(t *testing.T) {
	cfg := testConfig(t)
	d, _ := newTestDaemon(t, cfg)
	t.Cleanup(func() { d.Close() })

	removed, err := d.DiscardSession(context.Background(), 404)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("expected no removal for missing session")
	}
}

func TestPublishRequiresRunningDaemon(t *testing.T) {
	cfg := testConfig(t)
	d, store := newTestDaemon(t, cfg)
	t.Cleanup(func() { d.Close() })

	sess := testsupport.NewDraft(t, store)
	if err := d.Publish(context.Background(), sess.ID); err == nil {
		t.Fatal("expected publish to fail while daemon is stopped")
	}
}

func TestPublishRejectsPublishedSession(t *testing.T) {
	cfg := testConfig(t)
	d, store := newTestDaemon(t, cfg)
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	sess := testsupport.NewDraft(t, store)
	sess.MarkPublished("post-1")
	if err := store.Update(ctx, sess); err != nil {
		t.Fatal(err)
	}

	if err := d.Publish(ctx, sess.ID); err == nil {
		t.Fatal("expected publish of published session to fail")
	}
}

func TestTestNotificationWithoutTopic(t *testing.T) {
	cfg := testConfig(t)
	d, _ := newTestDaemon(t, cfg)
	t.Cleanup(func() { d.Close() })

	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sent {
		t.Fatal("expected no notification without a topic")
	}
	if message == "" {
		t.Fatal("expected explanatory message")
	}
}

func TestStatusReportsPaths(t *testing.T) {
	cfg := testConfig(t)
	d, _ := newTestDaemon(t, cfg)
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := d.Status(ctx)
	if status.DatabasePath != cfg.DatabasePath() {
		t.Fatalf("unexpected database path %q", status.DatabasePath)
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("unexpected lock path %q", status.LockFilePath)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency statuses")
	}
}
