package composer

import (
	"context"
	"fmt"

	"lightbox/internal/catalog"
	"lightbox/internal/geometry"
	"lightbox/internal/logging"
	"lightbox/internal/services"
	"lightbox/internal/session"
	"lightbox/internal/trim"
)

// OpenGallery transitions Compose -> Gallery for the given media type.
// The mutual-exclusion and capacity guards run here, before the user
// sees a single asset: an image gallery never opens over a draft that
// already carries a video, and vice versa.
func (c *Composer) OpenGallery(ctx context.Context, mediaType catalog.MediaType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("gallery", session.ModeCompose); err != nil {
		return err
	}
	images, videos, err := c.counts()
	if err != nil {
		return err
	}

	switch mediaType {
	case catalog.MediaTypeImage:
		if videos > 0 {
			return services.Wrap(services.ErrCapacity, "composer", "gallery",
				"A draft cannot mix images and video. Remove the video first", nil)
		}
		if images >= MaxImages {
			return services.Wrap(services.ErrCapacity, "composer", "gallery",
				fmt.Sprintf("The draft already has %d images, the maximum", MaxImages), nil)
		}
	case catalog.MediaTypeVideo:
		if images > 0 {
			return services.Wrap(services.ErrCapacity, "composer", "gallery",
				"A draft cannot mix images and video. Remove the images first", nil)
		}
		if videos >= MaxVideos {
			return services.Wrap(services.ErrCapacity, "composer", "gallery",
				"The draft already has a video", nil)
		}
	default:
		return services.Wrap(services.ErrValidation, "composer", "gallery",
			fmt.Sprintf("Unknown media type %q", mediaType), nil)
	}

	c.sess.Mode = session.ModeGallery
	return c.persist(ctx)
}

// galleryMediaType reports which kind of gallery is open, derived from
// the current selection; an empty selection means the type is still
// decided by the first pick.
func galleryMediaType(selection []session.SelectedAsset) catalog.MediaType {
	if len(selection) == 0 {
		return ""
	}
	return selection[0].MediaType
}

// ToggleAsset adds a catalog asset to the selection or removes it when
// already selected. The selection invariants hold at every step: at most
// five images, at most one video, never both kinds.
func (c *Composer) ToggleAsset(ctx context.Context, assetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("select", session.ModeGallery); err != nil {
		return err
	}
	selection, err := c.sess.Selection()
	if err != nil {
		return services.Wrap(services.ErrState, "composer", "select", "Stored selection could not be decoded", err)
	}

	for i, picked := range selection {
		if picked.AssetID == assetID {
			selection = append(selection[:i], selection[i+1:]...)
			if err := c.sess.SetSelection(selection); err != nil {
				return services.Wrap(services.ErrState, "composer", "select", "Selection could not be saved", err)
			}
			return c.persist(ctx)
		}
	}

	asset, ok := c.library.Get(assetID)
	if !ok {
		return services.Wrap(services.ErrNotFound, "composer", "select",
			fmt.Sprintf("Asset %s is not in the catalog. Rescan and retry", assetID), nil)
	}
	if asset.Width <= 0 || asset.Height <= 0 {
		return services.Wrap(services.ErrValidation, "composer", "select",
			fmt.Sprintf("Asset %s has no usable dimensions", assetID), nil)
	}

	if current := galleryMediaType(selection); current != "" && current != asset.MediaType {
		return services.Wrap(services.ErrCapacity, "composer", "select",
			"Images and video cannot mix in one draft", nil)
	}

	images, videos, err := c.counts()
	if err != nil {
		return err
	}
	switch asset.MediaType {
	case catalog.MediaTypeVideo:
		if videos > 0 || len(selection) >= MaxVideos {
			return services.Wrap(services.ErrCapacity, "composer", "select", "Only one video per draft", nil)
		}
		if images > 0 {
			return services.Wrap(services.ErrCapacity, "composer", "select",
				"Images and video cannot mix in one draft", nil)
		}
	default:
		if videos > 0 {
			return services.Wrap(services.ErrCapacity, "composer", "select",
				"Images and video cannot mix in one draft", nil)
		}
		if images+len(selection) >= MaxImages {
			return services.Wrap(services.ErrCapacity, "composer", "select",
				fmt.Sprintf("At most %d images per draft", MaxImages), nil)
		}
	}

	selection = append(selection, session.SelectedAssetFromCatalog(asset))
	if err := c.sess.SetSelection(selection); err != nil {
		return services.Wrap(services.ErrState, "composer", "select", "Selection could not be saved", err)
	}
	return c.persist(ctx)
}

// SetRatio picks the draft's aspect ratio. One ratio applies to every
// image in the draft, so changing it resets all pan offsets back to
// center; old offsets would land on different source pixels.
func (c *Composer) SetRatio(ctx context.Context, kind geometry.RatioKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("ratio", session.ModeGallery, session.ModeCrop, session.ModeVideoCrop); err != nil {
		return err
	}
	selection, err := c.sess.Selection()
	if err != nil {
		return services.Wrap(services.ErrState, "composer", "ratio", "Stored selection could not be decoded", err)
	}

	var ratio geometry.AspectRatio
	var ok bool
	if galleryMediaType(selection) == catalog.MediaTypeVideo || c.sess.Mode == session.ModeVideoCrop {
		ratio, ok = geometry.VideoRatioByKind(kind)
	} else {
		ratio, ok = geometry.ImageRatioByKind(kind)
	}
	if !ok {
		return services.Wrap(services.ErrValidation, "composer", "ratio",
			fmt.Sprintf("Aspect ratio %q is not available for this media", kind), nil)
	}

	if string(ratio.Kind) != c.sess.RatioKind {
		c.pan.Reset()
		if err := c.sess.SetOffsets(nil); err != nil {
			return services.Wrap(services.ErrState, "composer", "ratio", "Pan offsets could not be cleared", err)
		}
	}
	c.sess.RatioKind = string(ratio.Kind)

	if c.sess.Mode == session.ModeCrop || c.sess.Mode == session.ModeVideoCrop {
		if active := c.pan.ActiveAsset(); active != "" {
			c.activateLocked(active, selection)
		}
	}
	return c.persist(ctx)
}

// ConfirmSelection leaves the gallery with the current selection. Image
// selections go to Crop; a video goes straight to VideoCrop unless it
// exceeds the clip cap, in which case the trim detour is mandatory.
func (c *Composer) ConfirmSelection(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("confirm", session.ModeGallery); err != nil {
		return err
	}
	selection, err := c.sess.Selection()
	if err != nil {
		return services.Wrap(services.ErrState, "composer", "confirm", "Stored selection could not be decoded", err)
	}
	if len(selection) == 0 {
		return services.Wrap(services.ErrValidation, "composer", "confirm", "Select at least one asset first", nil)
	}

	if galleryMediaType(selection) == catalog.MediaTypeVideo {
		video := selection[0]
		if _, ok := geometry.VideoRatioByKind(geometry.RatioKind(c.sess.RatioKind)); !ok {
			c.sess.RatioKind = string(geometry.DefaultRatioKind)
		}
		if video.DurationSeconds > c.cfg.Media.VideoClipSeconds {
			c.sess.Mode = session.ModeVideoTrim
			c.sess.TrimStartSeconds = 0
			c.trimCtl = nil
		} else {
			c.sess.Mode = session.ModeVideoCrop
			c.activateLocked(video.AssetID, selection)
		}
		return c.persist(ctx)
	}

	if _, ok := geometry.ImageRatioByKind(geometry.RatioKind(c.sess.RatioKind)); !ok {
		c.sess.RatioKind = string(geometry.DefaultRatioKind)
	}
	c.sess.Mode = session.ModeCrop
	c.activateLocked(selection[0].AssetID, selection)
	return c.persist(ctx)
}

// ActivateAsset switches the crop surface to another selected asset.
// The outgoing asset's accumulated offset stays saved; the incoming one
// restores its own, defaulting to center.
func (c *Composer) ActivateAsset(ctx context.Context, assetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("activate", session.ModeCrop, session.ModeVideoCrop); err != nil {
		return err
	}
	selection, err := c.sess.Selection()
	if err != nil {
		return services.Wrap(services.ErrState, "composer", "activate", "Stored selection could not be decoded", err)
	}
	for _, picked := range selection {
		if picked.AssetID == assetID {
			c.activateLocked(assetID, selection)
			return c.syncOffsetsLocked(ctx)
		}
	}
	return services.Wrap(services.ErrNotFound, "composer", "activate",
		fmt.Sprintf("Asset %s is not part of the selection", assetID), nil)
}

// activateLocked recomputes bounds for the asset against the canonical
// output frame and points the pan controller at it.
func (c *Composer) activateLocked(assetID string, selection []session.SelectedAsset) {
	ratio, ok := geometry.RatioByKind(geometry.RatioKind(c.sess.RatioKind))
	if !ok {
		return
	}
	for _, picked := range selection {
		if picked.AssetID != assetID {
			continue
		}
		frame := geometry.OutputFrame(ratio)
		render := geometry.ScaledDimensions(picked.Width, picked.Height, ratio, frame)
		c.pan.Activate(assetID, geometry.PanBounds(render, frame))
		return
	}
}

// ActiveBounds exposes the active asset's pan range so the surface can
// disable dragging on a perfect fit.
func (c *Composer) ActiveBounds() geometry.Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pan.Bounds()
}

// BeginDrag starts a pan gesture on the active asset.
func (c *Composer) BeginDrag() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMode("drag", session.ModeCrop, session.ModeVideoCrop); err != nil {
		return err
	}
	if c.pan.Bounds().PerfectFit() {
		return services.Wrap(services.ErrState, "composer", "drag",
			"The asset matches the crop ratio exactly; there is nothing to pan", nil)
	}
	return c.pan.Begin()
}

// Drag applies the gesture's accumulated delta and returns the clamped
// offset to render. Pure math under the lock, nothing persists here.
func (c *Composer) Drag(deltaX, deltaY float64) geometry.Offset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pan.Move(deltaX, deltaY)
}

// EndDrag persists the gesture's final offset as the asset's new
// accumulator.
func (c *Composer) EndDrag(ctx context.Context) (geometry.Offset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	final := c.pan.End()
	return final, c.syncOffsetsLocked(ctx)
}

// CancelDrag discards the in-flight offset; the last persisted value
// stands.
func (c *Composer) CancelDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pan.Cancel()
}

func (c *Composer) syncOffsetsLocked(ctx context.Context) error {
	if err := c.sess.SetOffsets(c.pan.Offsets()); err != nil {
		return services.Wrap(services.ErrState, "composer", "offsets", "Pan offsets could not be saved", err)
	}
	return c.persist(ctx)
}

// ConfigureTrim sizes the trim timeline for the selected video against
// the surface's rendered width. Required before trim gestures; resuming
// a stored session restores the persisted start time.
func (c *Composer) ConfigureTrim(timelineWidthPx float64) (*trim.Controller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("trim", session.ModeVideoTrim); err != nil {
		return nil, err
	}
	selection, err := c.sess.Selection()
	if err != nil {
		return nil, services.Wrap(services.ErrState, "composer", "trim", "Stored selection could not be decoded", err)
	}
	if galleryMediaType(selection) != catalog.MediaTypeVideo {
		return nil, services.Wrap(services.ErrState, "composer", "trim", "No video selected", nil)
	}

	ctl, err := trim.NewController(
		selection[0].DurationSeconds,
		c.cfg.Media.VideoClipSeconds,
		timelineWidthPx,
		c.cfg.Media.TrimMinSelectionPx,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "composer", "trim", "Trim timeline could not be sized", err)
	}
	ctl.SetStart(c.sess.TrimStartSeconds)
	c.trimCtl = ctl
	return ctl, nil
}

// TrimDrag moves the selection window and returns the resulting clip
// start in seconds.
func (c *Composer) TrimDrag(deltaPx float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trimCtl == nil {
		return 0, services.Wrap(services.ErrState, "composer", "trim", "Trim timeline is not configured", nil)
	}
	return c.trimCtl.Drag(deltaPx), nil
}

// EndTrimDrag completes the gesture and persists the chosen start time.
func (c *Composer) EndTrimDrag(ctx context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trimCtl == nil {
		return 0, services.Wrap(services.ErrState, "composer", "trim", "Trim timeline is not configured", nil)
	}
	c.trimCtl.EndDrag()
	c.sess.TrimStartSeconds = c.trimCtl.StartTime()
	return c.sess.TrimStartSeconds, c.persist(ctx)
}

// ConfirmTrim carries the chosen start time into VideoCrop, where the
// finalize step will cut [start, start+cap].
func (c *Composer) ConfirmTrim(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("trim", session.ModeVideoTrim); err != nil {
		return err
	}
	if c.trimCtl != nil {
		c.sess.TrimStartSeconds = c.trimCtl.StartTime()
	}
	selection, err := c.sess.Selection()
	if err != nil {
		return services.Wrap(services.ErrState, "composer", "trim", "Stored selection could not be decoded", err)
	}
	c.sess.Mode = session.ModeVideoCrop
	if len(selection) > 0 {
		c.activateLocked(selection[0].AssetID, selection)
	}
	c.logger.Debug("trim confirmed",
		logging.Int64(logging.FieldSessionID, c.sess.ID),
		logging.Float64("start_seconds", c.sess.TrimStartSeconds))
	return c.persist(ctx)
}

// Back abandons the current detour without finalizing. Session-local
// crop state (selection, offsets, trim position) is discarded; media the
// draft already finalized stays untouched.
func (c *Composer) Back(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("back",
		session.ModeGallery, session.ModeCrop, session.ModeVideoCrop, session.ModeVideoTrim); err != nil {
		return err
	}
	return c.resetSessionStateLocked(ctx)
}

func (c *Composer) resetSessionStateLocked(ctx context.Context) error {
	c.pan.Reset()
	c.trimCtl = nil
	c.sess.Mode = session.ModeCompose
	c.sess.TrimStartSeconds = 0
	if err := c.sess.SetSelection(nil); err != nil {
		return services.Wrap(services.ErrState, "composer", "back", "Selection could not be cleared", err)
	}
	if err := c.sess.SetOffsets(nil); err != nil {
		return services.Wrap(services.ErrState, "composer", "back", "Pan offsets could not be cleared", err)
	}
	return c.persist(ctx)
}
