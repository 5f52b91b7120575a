// Package pan tracks per-asset pan offsets through drag gestures during a
// crop session.
//
// The controller keeps one persisted offset accumulator per asset, keyed
// by asset ID so reordering a selection never cross-wires offsets. A drag
// gesture snapshots the accumulator as its base, clamps every move into
// the active asset's pan bounds for rendering, and persists the final
// value only when the gesture ends. Cancelling discards the in-flight
// value and leaves the last persisted offset standing.
//
// Controller methods are not safe for concurrent use; the owning session
// serializes access and allows a single gesture at a time.
package pan
