package main

import (
	"os"
	"path/filepath"

	"lightbox/internal/config"
)

func buildSocketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join(os.TempDir(), "lightboxd.sock")
	}
	return cfg.SocketPath()
}
