package processing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lightbox/internal/fileutil"
	"lightbox/internal/geometry"
)

func TestThumbnailerExtractsFrame(t *testing.T) {
	pipeline, fake, cfg := newTestPipeline(t)
	src := writeVideoFile(t, t.TempDir(), "clip.mp4", 2048)

	sess := newDraft(geometry.RatioVertical)
	gen := pipeline.Thumbnailer(sess)

	uri, err := gen.Thumbnail(context.Background(), fileutil.FileURI(src), 2.5)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	path, ok := fileutil.PathFromFileURI(uri)
	if !ok {
		t.Fatalf("expected file URI result, got %q", uri)
	}
	if filepath.Dir(path) != sess.StagingRoot(cfg.Paths.StagingDir) {
		t.Fatalf("thumbnail %s not under session staging", path)
	}
	if filepath.Base(path) != "thumb-2500ms.jpg" {
		t.Fatalf("unexpected thumbnail name %s", filepath.Base(path))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected frame on disk: %v", err)
	}
	if len(fake.frameCalls) != 1 || !strings.Contains(fake.frameCalls[0], "@2.5") {
		t.Fatalf("unexpected frame calls %v", fake.frameCalls)
	}
}

func TestThumbnailerRejectsRemoteURI(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)
	gen := pipeline.Thumbnailer(newDraft(geometry.RatioVertical))

	if _, err := gen.Thumbnail(context.Background(), "https://cdn.example.com/clip.mp4", 1); err == nil {
		t.Fatal("expected error for non-file URI")
	}
}

func TestThumbnailerPropagatesExtractFailure(t *testing.T) {
	pipeline, fake, _ := newTestPipeline(t)
	fake.frameErr = errors.New("boom")
	src := writeVideoFile(t, t.TempDir(), "clip.mp4", 2048)

	gen := pipeline.Thumbnailer(newDraft(geometry.RatioVertical))
	if _, err := gen.Thumbnail(context.Background(), fileutil.FileURI(src), 0); err == nil {
		t.Fatal("expected extract failure to propagate")
	}
}
