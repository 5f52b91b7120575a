package pan

import (
	"errors"

	"lightbox/internal/geometry"
)

// ErrGestureActive is returned by Begin when a drag is already in flight.
var ErrGestureActive = errors.New("drag gesture already active")

// Controller owns the pan state of one crop session: the persisted offset
// per asset and the lifecycle of the current drag gesture.
type Controller struct {
	offsets map[string]geometry.Offset

	activeAsset string
	bounds      geometry.Bounds

	gestureActive bool
	base          geometry.Offset
	inFlight      geometry.Offset
}

// NewController returns an empty controller with no active asset.
func NewController() *Controller {
	return &Controller{offsets: make(map[string]geometry.Offset)}
}

// Activate switches the controller to the given asset with its freshly
// computed bounds. The incoming asset's persisted offset is restored,
// defaulting to center and re-clamped in case the bounds shrank since it
// was saved. Any in-flight gesture is discarded first.
func (c *Controller) Activate(assetID string, bounds geometry.Bounds) {
	c.gestureActive = false
	c.activeAsset = assetID
	c.bounds = bounds

	restored := bounds.Clamp(c.offsets[assetID])
	c.offsets[assetID] = restored
	c.base = restored
	c.inFlight = restored
}

// ActiveAsset returns the ID of the asset gestures currently apply to.
func (c *Controller) ActiveAsset() string {
	return c.activeAsset
}

// Bounds returns the pan bounds of the active asset.
func (c *Controller) Bounds() geometry.Bounds {
	return c.bounds
}

// Begin starts a drag gesture, snapshotting the persisted offset as the
// gesture base. A second Begin while one is active is rejected.
func (c *Controller) Begin() error {
	if c.activeAsset == "" {
		return errors.New("no active asset")
	}
	if c.gestureActive {
		return ErrGestureActive
	}
	c.gestureActive = true
	c.base = c.offsets[c.activeAsset]
	c.inFlight = c.base
	return nil
}

// Move applies a drag delta relative to the gesture base and returns the
// clamped offset to render. The value is visual-only and is not persisted
// until End. A move with no active gesture returns the persisted offset
// unchanged.
func (c *Controller) Move(deltaX, deltaY float64) geometry.Offset {
	if !c.gestureActive {
		return c.Current()
	}
	c.inFlight = c.bounds.Clamp(geometry.Offset{
		X: c.base.X + deltaX,
		Y: c.base.Y + deltaY,
	})
	return c.inFlight
}

// End persists the in-flight offset as the active asset's new accumulator
// and returns it. A stray End with no active gesture is a no-op.
func (c *Controller) End() geometry.Offset {
	if !c.gestureActive {
		return c.Current()
	}
	c.gestureActive = false
	c.offsets[c.activeAsset] = c.inFlight
	c.base = c.inFlight
	return c.inFlight
}

// Cancel discards the in-flight offset; the last persisted value stands.
func (c *Controller) Cancel() {
	if !c.gestureActive {
		return
	}
	c.gestureActive = false
	c.inFlight = c.offsets[c.activeAsset]
}

// Dragging reports whether a gesture is currently in flight.
func (c *Controller) Dragging() bool {
	return c.gestureActive
}

// Current returns the offset to render right now: the in-flight value
// during a gesture, the persisted accumulator otherwise.
func (c *Controller) Current() geometry.Offset {
	if c.gestureActive {
		return c.inFlight
	}
	if c.activeAsset == "" {
		return geometry.Offset{}
	}
	return c.offsets[c.activeAsset]
}

// Offset returns the persisted accumulator for any asset, defaulting to
// center for assets never panned.
func (c *Controller) Offset(assetID string) geometry.Offset {
	return c.offsets[assetID]
}

// Offsets returns a copy of all persisted accumulators, for session
// persistence.
func (c *Controller) Offsets() map[string]geometry.Offset {
	out := make(map[string]geometry.Offset, len(c.offsets))
	for id, off := range c.offsets {
		out[id] = off
	}
	return out
}

// SetOffsets replaces all persisted accumulators, used when resuming a
// stored session. Any in-flight gesture is discarded.
func (c *Controller) SetOffsets(offsets map[string]geometry.Offset) {
	c.gestureActive = false
	c.offsets = make(map[string]geometry.Offset, len(offsets))
	for id, off := range offsets {
		c.offsets[id] = off
	}
	if c.activeAsset != "" {
		restored := c.bounds.Clamp(c.offsets[c.activeAsset])
		c.offsets[c.activeAsset] = restored
		c.base = restored
		c.inFlight = restored
	}
}

// Reset clears every accumulator and gesture. Called when the crop
// session ends or the ratio changes and all pans restart from center.
func (c *Controller) Reset() {
	c.offsets = make(map[string]geometry.Offset)
	c.gestureActive = false
	c.activeAsset = ""
	c.bounds = geometry.Bounds{}
	c.base = geometry.Offset{}
	c.inFlight = geometry.Offset{}
}
