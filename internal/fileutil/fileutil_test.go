package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")

	if err := EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	info, err := os.Stat(nested)
	if err != nil || !info.IsDir() {
		t.Fatalf("stat after EnsureDir: info=%v err=%v", info, err)
	}

	// Existing directories are fine.
	if err := EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir(existing) error: %v", err)
	}

	if err := EnsureDir("  "); err == nil {
		t.Error("EnsureDir(empty) succeeded")
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(path, make([]byte, 4096), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	size, err := FileSize(path)
	if err != nil {
		t.Fatalf("FileSize() error: %v", err)
	}
	if size != 4096 {
		t.Errorf("FileSize() = %d, want 4096", size)
	}

	if _, err := FileSize(dir); err == nil {
		t.Error("FileSize(directory) succeeded")
	}
	if _, err := FileSize(filepath.Join(dir, "missing")); err == nil {
		t.Error("FileSize(missing) succeeded")
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")
	payload := []byte("not really a jpeg but the bytes are faithful")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatalf("CopyFileVerified() error: %v", err)
	}

	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(copied) != string(payload) {
		t.Errorf("dst content = %q, want source bytes", copied)
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileVerified(filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	if err == nil {
		t.Fatal("CopyFileVerified(missing source) succeeded")
	}
}

func TestFileURIRoundTrip(t *testing.T) {
	path := "/media/store/2026/clip one.mp4"
	uri := FileURI(path)
	if uri != "file:///media/store/2026/clip%20one.mp4" {
		t.Errorf("FileURI() = %q", uri)
	}

	back, ok := PathFromFileURI(uri)
	if !ok || back != path {
		t.Errorf("PathFromFileURI(%q) = %q ok=%v, want %q", uri, back, ok, path)
	}
}

func TestPathFromFileURI(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		want   string
		wantOK bool
	}{
		{"plain absolute path", "/media/a.jpg", "/media/a.jpg", true},
		{"file uri", "file:///media/a.jpg", "/media/a.jpg", true},
		{"http url", "https://cdn.example.com/a.jpg", "", false},
		{"empty", "   ", "", false},
		{"relative", "media/a.jpg", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PathFromFileURI(tt.uri)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("PathFromFileURI(%q) = (%q, %v), want (%q, %v)",
					tt.uri, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
