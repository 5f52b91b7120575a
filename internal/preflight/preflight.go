package preflight

import (
	"context"

	"lightbox/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding collaborator is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Media store", cfg.Paths.MediaStoreDir),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	results = append(results,
		CheckEndpoint(ctx, "Upload API", cfg.Uploader.BaseURL, cfg.Uploader.Token),
		CheckEndpoint(ctx, "Eligibility API", cfg.Eligibility.BaseURL, cfg.Eligibility.Token),
		CheckEndpoint(ctx, "Posts API", cfg.Posts.BaseURL, cfg.Posts.Token),
	)

	return results
}
