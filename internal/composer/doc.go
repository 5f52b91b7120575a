// Package composer implements the modal state machine that assembles one
// post draft: Compose, Gallery, Crop, VideoCrop and VideoTrim modes with
// exhaustive transition guards. The composer owns the draft and the
// per-asset pan offsets; the geometry, pan, trim and processing packages
// never touch session state directly.
package composer
