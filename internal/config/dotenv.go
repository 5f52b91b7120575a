package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadDotenv overlays variables from .env files before the env fallbacks in
// normalize run. godotenv.Load never overrides values already present in the
// environment, and missing files are not an error.
func loadDotenv() {
	candidates := []string{".env", ".env.local"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "lightbox", ".env"))
	}
	for _, candidate := range candidates {
		_ = godotenv.Load(candidate)
	}
}
