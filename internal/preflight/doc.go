// Package preflight provides readiness checks for external services
// and filesystem paths that lightbox depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs failures so a
//     misconfigured engine is obvious before the first session starts.
//   - The CLI "lightbox status" command uses the individual check
//     functions to display service health.
//
// Each check is gated by its config toggle -- unconfigured collaborators
// are skipped.
package preflight
