package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"lightbox/internal/catalog"
	"lightbox/internal/config"
	"lightbox/internal/geometry"
	"lightbox/internal/logging"
	"lightbox/internal/notifications"
	"lightbox/internal/services"
	"lightbox/internal/services/eligibility"
	"lightbox/internal/services/posts"
	"lightbox/internal/services/uploader"
	"lightbox/internal/session"
)

// Orchestrator runs the publish sequence for one session at a time.
// Uploads are sequential so progress is deterministic and peak resource
// use stays bounded.
type Orchestrator struct {
	cfg      *config.Config
	store    *session.Store
	logger   *slog.Logger
	uploads  uploader.Client
	gate     eligibility.Client
	posts    posts.Client
	notifier notifications.Service
}

// New builds an orchestrator wired to the configured collaborator APIs.
func New(cfg *config.Config, store *session.Store, logger *slog.Logger, notifier notifications.Service) *Orchestrator {
	return NewWithClients(cfg, store, logger, notifier,
		uploader.NewFromConfig(cfg),
		eligibility.NewFromConfig(cfg),
		posts.NewFromConfig(cfg))
}

// NewWithClients injects collaborator clients, primarily for tests.
func NewWithClients(
	cfg *config.Config,
	store *session.Store,
	logger *slog.Logger,
	notifier notifications.Service,
	uploads uploader.Client,
	gate eligibility.Client,
	postAPI posts.Client,
) *Orchestrator {
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "publish"),
		uploads:  uploads,
		gate:     gate,
		posts:    postAPI,
		notifier: notifier,
	}
}

// Run executes the full publish sequence for a session already moved to
// publishing by the composer. On success the session is marked published
// and its staging directory removed; on any failure it reverts to an
// editable draft with the error recorded, and the draft content survives
// untouched for a retry.
func (o *Orchestrator) Run(ctx context.Context, sess *session.Session) error {
	media, err := sess.Processed()
	if err != nil {
		return o.fail(ctx, sess, services.Wrap(services.ErrState, "publish", "decode", "Stored media list could not be decoded", err))
	}

	o.logger.Info("publish started",
		logging.Int64(logging.FieldSessionID, sess.ID),
		logging.Int("media_count", len(media)),
		logging.Bool("edit_mode", sess.PostID != ""))
	_ = o.notifier.NotifyPublishStarted(ctx, sess.ID, len(media))

	if err := o.run(ctx, sess, media); err != nil {
		return o.fail(ctx, sess, err)
	}

	o.logger.Info("publish completed",
		logging.Int64(logging.FieldSessionID, sess.ID),
		logging.String("post_id", sess.PostID))
	_ = o.notifier.NotifyPublishCompleted(ctx, sess.ID, sess.PostID)
	return nil
}

func (o *Orchestrator) run(ctx context.Context, sess *session.Session, media []session.ProcessedMedia) error {
	// Step 1: local validation, before any network activity.
	if strings.TrimSpace(sess.DraftText) == "" && len(media) == 0 {
		return services.Wrap(services.ErrValidation, "publish", "validate",
			"Nothing to publish. Add text or media to the draft first", nil)
	}

	// Step 2: eligibility gating, both checks short-circuit.
	if err := o.checkEligibility(ctx, sess); err != nil {
		return err
	}

	// Step 3: media reference validation.
	for _, item := range media {
		if item.MediaType != catalog.MediaTypeVideo {
			continue
		}
		ref := item.URI
		if item.Path != "" {
			ref = item.Path
		}
		if err := ValidateVideoReference(ref); err != nil {
			return services.Wrap(services.ErrValidation, "publish", "media", "Video reference is not uploadable", err)
		}
	}

	// Step 4: sequential uploads, images before the video. The first
	// failure aborts everything that remains; nothing published so far
	// is rolled back here, orphaned uploads are collected server-side.
	imageURLs, videoURLs, err := o.uploadAll(ctx, sess, media)
	if err != nil {
		return err
	}

	// Step 5: final assembly.
	payload := posts.Payload{
		OwnerID:     o.cfg.Account.ID,
		Text:        sess.DraftText,
		ImageURLs:   imageURLs,
		VideoURLs:   videoURLs,
		AspectRatio: sess.RatioKind,
		Category:    sess.Category,
	}
	o.progress(ctx, sess, "Publishing", "Creating post", 95)

	var post posts.Post
	if sess.PostID != "" {
		post, err = o.posts.Update(ctx, sess.PostID, payload)
	} else {
		post, err = o.posts.Create(ctx, payload)
	}
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "post", "Post could not be saved", err)
	}

	postID := post.ID
	if postID == "" {
		postID = sess.PostID
	}
	sess.MarkPublished(postID)
	if err := o.store.Update(ctx, sess); err != nil {
		return services.Wrap(services.ErrState, "publish", "persist", "Published session could not be saved", err)
	}
	o.cleanupStaging(sess)
	return nil
}

// checkEligibility asks the gating collaborator whether the account may
// post. Verification always applies; membership only for account
// categories outside the configured exemption list. Both failures carry
// distinct messages pointing at the remediation surface.
func (o *Orchestrator) checkEligibility(ctx context.Context, sess *session.Session) error {
	owner := o.cfg.Account.ID
	if strings.TrimSpace(owner) == "" {
		return services.Wrap(services.ErrConfiguration, "publish", "eligibility",
			"No account configured. Set account.id in the config file", nil)
	}

	o.progress(ctx, sess, "Checking", "Checking posting eligibility", 5)

	verified, err := o.gate.VerificationStatus(ctx, owner)
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "eligibility", "Verification status could not be checked", err)
	}
	if !verified {
		return services.Wrap(services.ErrEligibility, "publish", "verification",
			"Identity verification required. Complete verification in account settings, then retry", nil)
	}

	if slices.Contains(o.cfg.Eligibility.ExemptCategories, sess.Category) {
		return nil
	}
	active, err := o.gate.MembershipStatus(ctx, owner)
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "eligibility", "Membership status could not be checked", err)
	}
	if !active {
		return services.Wrap(services.ErrEligibility, "publish", "membership",
			"An active membership is required to post. Renew the membership, then retry", nil)
	}
	return nil
}

// uploadAll pushes every local file to the upload API one at a time,
// images first, the video last. Entries that already point at remote
// URLs pass through unchanged (edit mode).
func (o *Orchestrator) uploadAll(ctx context.Context, sess *session.Session, media []session.ProcessedMedia) (imageURLs, videoURLs []string, err error) {
	pending := 0
	for _, item := range media {
		if !item.Remote() {
			pending++
		}
	}

	uploaded := 0
	upload := func(item session.ProcessedMedia, kind uploader.Kind, label string) (string, error) {
		if item.Remote() {
			return item.URI, nil
		}
		uploaded++
		message := fmt.Sprintf("Uploading %s %d of %d", label, uploaded, pending)
		percent := 10 + float64(uploaded-1)/float64(pending)*80
		o.progress(ctx, sess, "Uploading", message, percent)

		url, uploadErr := o.uploads.Upload(ctx, item.Path, o.cfg.Account.ID, kind)
		if uploadErr != nil {
			return "", services.Wrap(services.ErrUpload, "publish", "upload",
				fmt.Sprintf("Upload %d of %d failed; nothing was published", uploaded, pending), uploadErr)
		}
		o.logger.Debug("media uploaded",
			logging.Int64(logging.FieldSessionID, sess.ID),
			logging.String(logging.FieldAssetID, item.AssetID),
			logging.String("url", url))
		return url, nil
	}

	var video *session.ProcessedMedia
	for i := range media {
		item := media[i]
		if item.MediaType == catalog.MediaTypeVideo {
			video = &media[i]
			continue
		}
		url, err := upload(item, uploader.KindImage, "image")
		if err != nil {
			return nil, nil, err
		}
		imageURLs = append(imageURLs, url)
	}
	if video != nil {
		url, err := upload(*video, uploader.KindVideo, "video")
		if err != nil {
			return nil, nil, err
		}
		videoURLs = append(videoURLs, url)
	}
	return imageURLs, videoURLs, nil
}

// progress persists a progress update so the CLI and API see publish
// state in flight. Persistence failures only log; progress is advisory.
func (o *Orchestrator) progress(ctx context.Context, sess *session.Session, stage, message string, percent float64) {
	sess.SetProgress(stage, message, percent)
	if err := o.store.Update(ctx, sess); err != nil {
		o.logger.Warn("progress update not persisted",
			logging.Int64(logging.FieldSessionID, sess.ID),
			logging.Error(err))
	}
	_ = o.store.UpdateHeartbeat(ctx, sess.ID)
}

// fail reverts the session to an editable draft with the failure
// recorded. The draft text, selection and processed media all survive.
func (o *Orchestrator) fail(ctx context.Context, sess *session.Session, cause error) error {
	sess.SetPublishFailed(cause)
	if err := o.store.Update(ctx, sess); err != nil {
		o.logger.Error("failed session could not be saved",
			logging.Int64(logging.FieldSessionID, sess.ID),
			logging.Error(err))
	}
	o.logger.Error("publish failed",
		logging.Int64(logging.FieldSessionID, sess.ID),
		logging.Error(cause))
	_ = o.notifier.NotifyPublishFailed(ctx, sess.ID, cause)
	return cause
}

func (o *Orchestrator) cleanupStaging(sess *session.Session) {
	staging := sess.StagingRoot(o.cfg.Paths.StagingDir)
	if staging == "" {
		return
	}
	if err := os.RemoveAll(staging); err != nil {
		o.logger.Warn("staging directory not removed",
			logging.Int64(logging.FieldSessionID, sess.ID),
			logging.String("path", staging),
			logging.Error(err))
	}
}

// RatioLabel resolves the stored ratio kind to its display label for
// status output.
func RatioLabel(kind string) string {
	if ratio, ok := geometry.RatioByKind(geometry.RatioKind(kind)); ok {
		return ratio.Label
	}
	return kind
}
