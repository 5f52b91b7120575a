// Package session persists composition sessions in SQLite and exposes
// helpers for driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, heartbeat tracking, stuck-publish recovery, and retention
// sweeps. A session row captures the full editing state: draft text,
// the selection snapshot, per-asset pan offsets, the trim start, and
// processed output paths, so a restarted daemon can restore a draft
// exactly as the user left it.
//
// Schema changes bump the version in schema.go; users clear the database
// to adopt the new schema.
package session
