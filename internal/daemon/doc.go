// Package daemon coordinates the long-running lightbox process and its
// system integration points.
//
// It wires configuration, the session store, the asset catalog, and push
// notifications into a single lifecycle with flock-based locking to prevent
// multiple instances. The daemon reclaims interrupted publishes at startup,
// serves a small HTTP status API, watches removable devices for catalog
// rescans, and runs the maintenance sweep that reclaims stale publishes and
// purges expired published sessions.
//
// Keep orchestration logic here: composition and publish semantics live in
// their respective packages while the daemon focuses on startup, shutdown,
// and high level coordination.
package daemon
