package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"lightbox/internal/ipc"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Daemon:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []ipc.DependencyStatus{
		{Name: "ffmpeg", Available: false},
		{Name: "ffprobe", Available: true, Command: "ffprobe"},
		{Name: "exiftool", Available: false, Optional: true, Detail: "not configured"},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] not available") {
		t.Fatalf("expected error detail in first line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[OK] Ready (command: ffprobe)") {
		t.Fatalf("expected ready detail in second line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN] not configured") {
		t.Fatalf("expected warn detail in third line, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing dependencies:") {
		t.Fatalf("expected missing dependencies summary, got %q", lines[3])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestFormatStatusLabel(t *testing.T) {
	if got := formatStatusLabel("video_trim"); got != "Video Trim" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := formatStatusLabel(""); got != "" {
		t.Fatalf("expected empty label, got %q", got)
	}
}

func TestFormatMediaCounts(t *testing.T) {
	if got := formatMediaCounts(3, 0); got != "3 img" {
		t.Fatalf("unexpected counts %q", got)
	}
	if got := formatMediaCounts(2, 1); got != "2 img, 1 vid" {
		t.Fatalf("unexpected counts %q", got)
	}
	if got := formatMediaCounts(0, 0); got != "-" {
		t.Fatalf("unexpected counts %q", got)
	}
}
