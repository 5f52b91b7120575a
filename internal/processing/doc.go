// Package processing renders a finalized draft's media into upload-ready
// files. Images are cropped at their persisted pan offset and resized to
// the selected ratio's output resolution; videos are trimmed to the clip
// window and compressed to a bounded size. Outputs land in the session's
// staging directory.
package processing
