// Package logging configures slog output for the lightbox daemon and CLI.
//
// It provides a console handler for interactive use, a JSON handler for
// machine-readable logs, typed attribute helpers, and context-derived
// fields (session id, stage, correlation id) so every component logs the
// same vocabulary.
package logging
