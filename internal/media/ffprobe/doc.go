// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The catalog uses it to read a video's dimensions and duration during a
// scan; the processing pipeline uses it to size and time-check clips
// before and after compression.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Inspect executes the binary and returns a parsed Result; helper methods
// on Result answer the questions the pipeline actually asks.
package ffprobe
