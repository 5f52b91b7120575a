// Package services defines shared utilities consumed by the composition
// pipeline and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into consistent dispositions (retryable vs needs attention).
//   - HTTP client plumbing shared by the uploader, eligibility, and posts
//     collaborators.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform across the engine.
package services
