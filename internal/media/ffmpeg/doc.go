// Package ffmpeg shells out to ffmpeg for video compression and frame
// extraction. Compression streams machine-readable progress blocks on
// stdout so long encodes can drive session progress updates.
package ffmpeg
