// Package trim places a fixed-duration selection window inside a longer
// video and converts timeline drags into a clip start time.
//
// A controller exists only for videos longer than the clip cap. The
// selection keeps a minimum pixel width so it stays draggable for long
// videos, drags clamp to the timeline, and the derived start time always
// lands in [0, duration-cap]. The controller also schedules the evenly
// spaced timeline thumbnails and bounds preview playback to the selected
// window.
package trim
