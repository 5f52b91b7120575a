package composer

import (
	"context"
	"fmt"
	"os"
	"slices"

	"lightbox/internal/catalog"
	"lightbox/internal/fileutil"
	"lightbox/internal/logging"
	"lightbox/internal/processing"
	"lightbox/internal/services"
	"lightbox/internal/session"
)

// Finalize converts the crop/trim session into draft media: every
// selected asset runs through the processing pipeline with its persisted
// offsets, the outputs append to the draft, and all session-local state
// resets. The mode returns to Compose. Processing errors leave the draft
// exactly as it was.
func (c *Composer) Finalize(ctx context.Context, progress processing.Progress) (processing.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("finalize", session.ModeCrop, session.ModeVideoCrop); err != nil {
		return processing.Result{}, err
	}
	if err := c.sess.SetOffsets(c.pan.Offsets()); err != nil {
		return processing.Result{}, services.Wrap(services.ErrState, "composer", "finalize", "Pan offsets could not be saved", err)
	}

	result, err := c.processor.ProcessSelection(ctx, c.sess, progress)
	if err != nil {
		return processing.Result{}, err
	}

	draft, err := c.sess.Processed()
	if err != nil {
		return processing.Result{}, services.Wrap(services.ErrState, "composer", "finalize", "Stored media list could not be decoded", err)
	}
	draft = append(draft, result.Media...)
	if err := c.sess.SetProcessed(draft); err != nil {
		return processing.Result{}, services.Wrap(services.ErrState, "composer", "finalize", "Draft media could not be saved", err)
	}

	c.logger.Info("session finalized",
		logging.Int64(logging.FieldSessionID, c.sess.ID),
		logging.Int("added", len(result.Media)),
		logging.Int("skipped", len(result.Skipped)))

	if err := c.resetSessionStateLocked(ctx); err != nil {
		return processing.Result{}, err
	}
	return result, nil
}

// RemoveMedia drops one finalized item from the draft, freeing capacity
// and, for a video, re-enabling the image gallery. Staged files for the
// removed item are deleted.
func (c *Composer) RemoveMedia(ctx context.Context, assetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("remove", session.ModeCompose); err != nil {
		return err
	}
	draft, err := c.sess.Processed()
	if err != nil {
		return services.Wrap(services.ErrState, "composer", "remove", "Stored media list could not be decoded", err)
	}
	kept := draft[:0]
	var removed *session.ProcessedMedia
	for i := range draft {
		if draft[i].AssetID == assetID && removed == nil {
			removed = &draft[i]
			continue
		}
		kept = append(kept, draft[i])
	}
	if removed == nil {
		return services.Wrap(services.ErrNotFound, "composer", "remove",
			fmt.Sprintf("Media %s is not part of the draft", assetID), nil)
	}
	if err := c.sess.SetProcessed(slices.Clip(kept)); err != nil {
		return services.Wrap(services.ErrState, "composer", "remove", "Draft media could not be saved", err)
	}
	if removed.Path != "" {
		_ = os.Remove(removed.Path)
	}
	return c.persist(ctx)
}

// Dirty reports whether the draft differs from the post it was seeded
// with: text, image list and video list all participate in the diff, so
// a close with any unsaved change asks for confirmation.
func (c *Composer) Dirty() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyLocked()
}

func (c *Composer) dirtyLocked() (bool, error) {
	seed, err := c.sess.Seed()
	if err != nil {
		return false, services.Wrap(services.ErrState, "composer", "close", "Stored draft seed could not be decoded", err)
	}
	draft, err := c.sess.Processed()
	if err != nil {
		return false, services.Wrap(services.ErrState, "composer", "close", "Stored media list could not be decoded", err)
	}

	var imageURIs, videoURIs []string
	for _, item := range draft {
		uri := item.URI
		if uri == "" {
			uri = fileutil.FileURI(item.Path)
		}
		if item.MediaType == catalog.MediaTypeVideo {
			videoURIs = append(videoURIs, uri)
		} else {
			imageURIs = append(imageURIs, uri)
		}
	}

	if c.sess.DraftText != seed.Text {
		return true, nil
	}
	if !slices.Equal(imageURIs, seed.ImageURIs) {
		return true, nil
	}
	if !slices.Equal(videoURIs, seed.VideoURIs) {
		return true, nil
	}
	return false, nil
}

// CloseCheck decides what closing the composer requires right now. A
// running publish blocks closing outright; a dirty draft needs a
// confirmation step; a clean draft closes silently.
func (c *Composer) CloseCheck() (needsConfirmation bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.IsPublishing() {
		return false, ErrPublishInFlight
	}
	return c.dirtyLocked()
}

// Discard deletes the session and its staged files. A running publish
// blocks the discard the same way it blocks closing.
func (c *Composer) Discard(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.IsPublishing() {
		return ErrPublishInFlight
	}
	c.pan.Reset()
	c.trimCtl = nil

	if staging := c.sess.StagingRoot(c.cfg.Paths.StagingDir); staging != "" {
		if err := os.RemoveAll(staging); err != nil {
			c.logger.Warn("staging directory not removed",
				logging.Int64(logging.FieldSessionID, c.sess.ID),
				logging.Error(err))
		}
	}
	if _, err := c.store.Remove(ctx, c.sess.ID); err != nil {
		return services.Wrap(services.ErrState, "composer", "discard", "Session could not be removed", err)
	}
	c.logger.Info("session discarded", logging.Int64(logging.FieldSessionID, c.sess.ID))
	return nil
}

// Publish hands the draft to the publish orchestrator. The session moves
// to publishing first so close and re-entry are blocked for the whole
// sequence; the orchestrator reverts it to an editable draft on failure.
func (c *Composer) Publish(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireMode("publish", session.ModeCompose); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.sess.IsEditable() {
		c.mu.Unlock()
		return services.Wrap(services.ErrState, "composer", "publish", "Session is no longer editable", nil)
	}

	c.sess.Mode = session.ModePublishing
	c.sess.Status = session.StatusPublishing
	c.sess.InitProgress("Starting", "Publish queued")
	if err := c.persist(ctx); err != nil {
		c.sess.Mode = session.ModeCompose
		c.sess.Status = session.StatusDraft
		c.mu.Unlock()
		return err
	}
	sess := c.sess
	c.mu.Unlock()

	// The orchestrator runs outside the composer lock; gestures and
	// status reads stay responsive during uploads. Serialization per
	// session is guaranteed by the publishing mode set above.
	return c.publisher.Run(ctx, sess)
}
