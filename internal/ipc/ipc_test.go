package ipc_test

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lightbox/internal/catalog"
	"lightbox/internal/daemon"
	"lightbox/internal/ipc"
	"lightbox/internal/logging"
	"lightbox/internal/session"
	"lightbox/internal/testsupport"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Uploader.BaseURL = ""
	cfg.Eligibility.BaseURL = ""
	cfg.Posts.BaseURL = ""
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	library := catalog.New(cfg, logger)
	d, err := daemon.New(cfg, store, library, logger, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.StateDir, "lightboxd.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if !strings.HasSuffix(status.DatabasePath, "lightbox.db") {
		t.Fatalf("unexpected database path: %s", status.DatabasePath)
	}

	draft := testsupport.NewDraft(t, store)
	published := testsupport.NewDraft(t, store)
	published.MarkPublished("post-99")
	if err := store.Update(ctx, published); err != nil {
		t.Fatal(err)
	}

	listResp, err := client.SessionList(nil)
	if err != nil {
		t.Fatalf("SessionList failed: %v", err)
	}
	if len(listResp.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(listResp.Sessions))
	}

	publishedResp, err := client.SessionList([]string{string(session.StatusPublished)})
	if err != nil {
		t.Fatalf("SessionList filter failed: %v", err)
	}
	if len(publishedResp.Sessions) != 1 || publishedResp.Sessions[0].ID != published.ID {
		t.Fatalf("expected published session %d, got %#v", published.ID, publishedResp.Sessions)
	}

	describeResp, err := client.SessionDescribe(draft.ID)
	if err != nil {
		t.Fatalf("SessionDescribe failed: %v", err)
	}
	if describeResp.Session.ID != draft.ID || describeResp.Session.Status != string(session.StatusDraft) {
		t.Fatalf("unexpected describe response: %#v", describeResp.Session)
	}
	if _, err := client.SessionDescribe(404); err == nil {
		t.Fatal("expected describe of missing session to fail")
	}

	healthResp, err := client.SessionHealth()
	if err != nil {
		t.Fatalf("SessionHealth failed: %v", err)
	}
	if healthResp.Total != 2 || healthResp.Published != 1 {
		t.Fatalf("unexpected health response: %#v", healthResp)
	}

	writePNG(t, filepath.Join(cfg.Paths.MediaStoreDir, "shot.png"), 1080, 1350)
	scanResp, err := client.CatalogScan()
	if err != nil {
		t.Fatalf("CatalogScan failed: %v", err)
	}
	if scanResp.Images != 1 {
		t.Fatalf("expected 1 image scanned, got %d", scanResp.Images)
	}

	statsResp, err := client.CatalogStats()
	if err != nil {
		t.Fatalf("CatalogStats failed: %v", err)
	}
	if statsResp.Images != 1 || statsResp.LastScan == "" {
		t.Fatalf("unexpected catalog stats: %#v", statsResp)
	}

	catalogResp, err := client.CatalogList(string(catalog.MediaTypeImage), "", 10)
	if err != nil {
		t.Fatalf("CatalogList failed: %v", err)
	}
	if len(catalogResp.Assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(catalogResp.Assets))
	}

	clearResp, err := client.ClearPublished()
	if err != nil {
		t.Fatalf("ClearPublished failed: %v", err)
	}
	if clearResp.Removed != 1 {
		t.Fatalf("expected 1 published session removed, got %d", clearResp.Removed)
	}

	discardResp, err := client.SessionDiscard(draft.ID)
	if err != nil {
		t.Fatalf("SessionDiscard failed: %v", err)
	}
	if !discardResp.Removed {
		t.Fatal("expected draft to be discarded")
	}

	resetResp, err := client.SessionReset()
	if err != nil {
		t.Fatalf("SessionReset failed: %v", err)
	}
	if resetResp.Updated != 0 {
		t.Fatalf("expected no stuck sessions, got %d", resetResp.Updated)
	}

	dbHealth, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth failed: %v", err)
	}
	if !strings.HasSuffix(dbHealth.DBPath, "lightbox.db") {
		t.Fatalf("unexpected db path: %s", dbHealth.DBPath)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp == nil || notifyResp.Message == "" {
		t.Fatalf("expected notification message, got %#v", notifyResp)
	}

	if _, err := client.Publish(0); err == nil {
		t.Fatal("expected publish of invalid id to fail")
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}

	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status2.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDialMissingSocket(t *testing.T) {
	if _, err := ipc.Dial(filepath.Join(t.TempDir(), "absent.sock")); err == nil {
		t.Fatal("expected dial of missing socket to fail")
	}
}
