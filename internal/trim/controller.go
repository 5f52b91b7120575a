package trim

import "fmt"

// Window is the selected clip interval handed to the processing pipeline.
type Window struct {
	Start    float64
	Duration float64
}

// End returns the exclusive end of the clip in seconds.
func (w Window) End() float64 {
	return w.Start + w.Duration
}

// PreviewWindow bounds preview playback to the current selection. The
// play head resets to Start whenever playback stops and never advances
// past End.
type PreviewWindow struct {
	Start float64
	End   float64
}

// Clamp confines a playhead position to the window.
func (p PreviewWindow) Clamp(position float64) float64 {
	if position < p.Start {
		return p.Start
	}
	if position > p.End {
		return p.End
	}
	return position
}

// Finished reports whether playback reached the end of the window.
func (p PreviewWindow) Finished(position float64) bool {
	return position >= p.End
}

// Controller owns the trim state of one video: the timeline geometry and
// the current selection position. The selection left edge in pixels is
// the single source of truth; the start time is derived from it.
//
// Methods are not safe for concurrent use; the owning session serializes
// access.
type Controller struct {
	total    float64
	cap      float64
	timeline float64

	selectionWidth float64
	left           float64

	dragging bool
	dragBase float64
}

// NewController sizes the selection window for a video of total seconds
// against a clip cap. Only videos longer than the cap need trimming;
// anything else is rejected.
func NewController(totalSeconds, capSeconds, timelineWidth, minSelectionWidth float64) (*Controller, error) {
	if totalSeconds <= 0 {
		return nil, fmt.Errorf("video duration %.2fs is not positive", totalSeconds)
	}
	if capSeconds <= 0 {
		return nil, fmt.Errorf("clip cap %.2fs is not positive", capSeconds)
	}
	if timelineWidth <= 0 {
		return nil, fmt.Errorf("timeline width %.1fpx is not positive", timelineWidth)
	}
	if totalSeconds <= capSeconds {
		return nil, fmt.Errorf("video duration %.2fs is within the %.2fs cap, nothing to trim", totalSeconds, capSeconds)
	}

	selection := (capSeconds / totalSeconds) * timelineWidth
	if selection < minSelectionWidth {
		selection = minSelectionWidth
	}
	if selection > timelineWidth {
		selection = timelineWidth
	}

	return &Controller{
		total:          totalSeconds,
		cap:            capSeconds,
		timeline:       timelineWidth,
		selectionWidth: selection,
	}, nil
}

// SelectionWidth returns the draggable window width in pixels.
func (c *Controller) SelectionWidth() float64 {
	return c.selectionWidth
}

// SelectionLeft returns the window's current left edge in pixels.
func (c *Controller) SelectionLeft() float64 {
	return c.left
}

// MaxSelectionLeft returns the furthest left edge the window can reach.
func (c *Controller) MaxSelectionLeft() float64 {
	return c.timeline - c.selectionWidth
}

// MaxStartTime returns the latest possible clip start in seconds.
func (c *Controller) MaxStartTime() float64 {
	return c.total - c.cap
}

// StartTime derives the clip start from the selection position.
func (c *Controller) StartTime() float64 {
	start := (c.left / c.timeline) * c.total
	if start < 0 {
		return 0
	}
	if max := c.MaxStartTime(); start > max {
		return max
	}
	return start
}

// BeginDrag snapshots the selection position as the gesture base.
func (c *Controller) BeginDrag() {
	c.dragging = true
	c.dragBase = c.left
}

// Drag applies the gesture's total pixel translation to the base and
// returns the resulting clip start. Drags without BeginDrag move from
// the current position.
func (c *Controller) Drag(deltaPx float64) float64 {
	base := c.left
	if c.dragging {
		base = c.dragBase
	}
	c.left = clamp(base+deltaPx, 0, c.MaxSelectionLeft())
	return c.StartTime()
}

// EndDrag completes the gesture; the selection stays where it landed.
func (c *Controller) EndDrag() {
	c.dragging = false
}

// SetStart positions the selection at an absolute start time, clamped
// into the valid range. Used when resuming a stored session or driving
// the trim by value rather than by gesture.
func (c *Controller) SetStart(seconds float64) float64 {
	seconds = clamp(seconds, 0, c.MaxStartTime())
	c.left = clamp((seconds/c.total)*c.timeline, 0, c.MaxSelectionLeft())
	return c.StartTime()
}

// Window returns the clip interval for processing: cap seconds from the
// current start.
func (c *Controller) Window() Window {
	return Window{Start: c.StartTime(), Duration: c.cap}
}

// Preview returns the playback window for the current selection.
func (c *Controller) Preview() PreviewWindow {
	start := c.StartTime()
	return PreviewWindow{Start: start, End: start + c.cap}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
