package composer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"lightbox/internal/catalog"
	"lightbox/internal/config"
	"lightbox/internal/geometry"
	"lightbox/internal/logging"
	"lightbox/internal/pan"
	"lightbox/internal/processing"
	"lightbox/internal/services"
	"lightbox/internal/session"
	"lightbox/internal/trim"
)

// Draft capacity limits. Images and a video never mix in one draft.
const (
	MaxImages = 5
	MaxVideos = 1
)

// ErrPublishInFlight is returned when close or discard is attempted while
// an upload sequence is running. The caller must block the action.
var ErrPublishInFlight = errors.New("publish in flight")

// Library is the slice of the asset catalog the composer needs.
type Library interface {
	Get(id string) (catalog.Asset, bool)
}

// Processor renders a session's selection into upload-ready files.
type Processor interface {
	ProcessSelection(ctx context.Context, sess *session.Session, progress processing.Progress) (processing.Result, error)
}

// Publisher runs the publish sequence for a session.
type Publisher interface {
	Run(ctx context.Context, sess *session.Session) error
}

// Composer drives one composition session. All methods serialize on an
// internal mutex; gesture methods stay O(1) math so the interactive
// surface never waits behind I/O.
type Composer struct {
	mu sync.Mutex

	cfg       *config.Config
	store     *session.Store
	library   Library
	processor Processor
	publisher Publisher
	logger    *slog.Logger

	sess    *session.Session
	pan     *pan.Controller
	trimCtl *trim.Controller
}

// New binds a composer to a stored session. Persisted pan offsets are
// restored so a resumed crop session continues where it left off.
func New(
	cfg *config.Config,
	store *session.Store,
	library Library,
	processor Processor,
	publisher Publisher,
	logger *slog.Logger,
	sess *session.Session,
) (*Composer, error) {
	if sess == nil {
		return nil, errors.New("session is nil")
	}
	offsets, err := sess.Offsets()
	if err != nil {
		return nil, services.Wrap(services.ErrState, "composer", "restore", "Stored pan offsets could not be decoded", err)
	}

	controller := pan.NewController()
	controller.SetOffsets(offsets)

	return &Composer{
		cfg:       cfg,
		store:     store,
		library:   library,
		processor: processor,
		publisher: publisher,
		logger:    logging.NewComponentLogger(logger, "composer"),
		sess:      sess,
		pan:       controller,
	}, nil
}

// Session returns a copy of the underlying session row.
func (c *Composer) Session() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.sess
}

// Mode returns the current modal state.
func (c *Composer) Mode() session.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Mode
}

// SetText replaces the draft text. Allowed in any editable mode; text
// edits never disturb selection or crop state.
func (c *Composer) SetText(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sess.IsEditable() {
		return services.Wrap(services.ErrState, "composer", "text", "Session is no longer editable", nil)
	}
	c.sess.DraftText = text
	return c.persist(ctx)
}

// SetCategory records the account-facing post category used by the
// eligibility exemption rules.
func (c *Composer) SetCategory(ctx context.Context, category string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sess.IsEditable() {
		return services.Wrap(services.ErrState, "composer", "category", "Session is no longer editable", nil)
	}
	c.sess.Category = strings.TrimSpace(category)
	return c.persist(ctx)
}

// Ratio returns the draft's aspect ratio.
func (c *Composer) Ratio() geometry.AspectRatio {
	c.mu.Lock()
	defer c.mu.Unlock()
	ratio, _ := geometry.RatioByKind(geometry.RatioKind(c.sess.RatioKind))
	return ratio
}

// SeedFromPost switches the session into edit mode for an existing post.
// The remote text and media become both the current draft and the seed
// snapshot the close diff compares against; remote media passes through
// a later publish without re-uploading.
func (c *Composer) SeedFromPost(ctx context.Context, postID, text string, imageURIs, videoURIs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireMode("seed", session.ModeCompose); err != nil {
		return err
	}
	if strings.TrimSpace(postID) == "" {
		return services.Wrap(services.ErrValidation, "composer", "seed", "Post ID is empty", nil)
	}

	var media []session.ProcessedMedia
	for _, uri := range imageURIs {
		media = append(media, session.ProcessedMedia{URI: uri, MediaType: catalog.MediaTypeImage})
	}
	for _, uri := range videoURIs {
		media = append(media, session.ProcessedMedia{URI: uri, MediaType: catalog.MediaTypeVideo})
	}

	c.sess.PostID = postID
	c.sess.DraftText = text
	if err := c.sess.SetProcessed(media); err != nil {
		return services.Wrap(services.ErrState, "composer", "seed", "Draft media could not be saved", err)
	}
	if err := c.sess.SetSeed(session.DraftSeed{Text: text, ImageURIs: imageURIs, VideoURIs: videoURIs}); err != nil {
		return services.Wrap(services.ErrState, "composer", "seed", "Draft seed could not be saved", err)
	}
	return c.persist(ctx)
}

func (c *Composer) persist(ctx context.Context) error {
	if err := c.store.Update(ctx, c.sess); err != nil {
		return services.Wrap(services.ErrState, "composer", "persist", "Session could not be saved", err)
	}
	return nil
}

// requireMode guards a transition on the current mode.
func (c *Composer) requireMode(operation string, allowed ...session.Mode) error {
	for _, mode := range allowed {
		if c.sess.Mode == mode {
			return nil
		}
	}
	return services.Wrap(services.ErrState, "composer", operation,
		"Not allowed in "+string(c.sess.Mode)+" mode", nil)
}

// counts tallies the draft's already-finalized media.
func (c *Composer) counts() (images, videos int, err error) {
	processed, err := c.sess.Processed()
	if err != nil {
		return 0, 0, services.Wrap(services.ErrState, "composer", "draft", "Stored media list could not be decoded", err)
	}
	for _, item := range processed {
		if item.MediaType == catalog.MediaTypeVideo {
			videos++
		} else {
			images++
		}
	}
	return images, videos, nil
}
