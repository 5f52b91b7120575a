package composer_test

import (
	"context"
	"errors"
	"testing"

	"lightbox/internal/catalog"
	"lightbox/internal/composer"
	"lightbox/internal/config"
	"lightbox/internal/geometry"
	"lightbox/internal/logging"
	"lightbox/internal/processing"
	"lightbox/internal/services"
	"lightbox/internal/session"
	"lightbox/internal/testsupport"
)

type stubLibrary map[string]catalog.Asset

func (s stubLibrary) Get(id string) (catalog.Asset, bool) {
	asset, ok := s[id]
	return asset, ok
}

type stubProcessor struct {
	err     error
	calls   int
	lastSel []session.SelectedAsset
}

func (s *stubProcessor) ProcessSelection(_ context.Context, sess *session.Session, _ processing.Progress) (processing.Result, error) {
	s.calls++
	if s.err != nil {
		return processing.Result{}, s.err
	}
	selection, err := sess.Selection()
	if err != nil {
		return processing.Result{}, err
	}
	s.lastSel = selection
	var res processing.Result
	for _, asset := range selection {
		res.Media = append(res.Media, session.ProcessedMedia{
			AssetID:   asset.AssetID,
			Path:      "/staging/" + asset.AssetID + ".out",
			MediaType: asset.MediaType,
		})
	}
	return res, nil
}

type stubPublisher struct {
	err     error
	calls   int
	errHook func(sess *session.Session)
}

func (s *stubPublisher) Run(_ context.Context, sess *session.Session) error {
	s.calls++
	if s.errHook != nil {
		s.errHook(sess)
	}
	if s.err != nil {
		sess.SetPublishFailed(s.err)
		return s.err
	}
	sess.MarkPublished("post-1")
	return nil
}

func imageAsset(id string, w, h int) catalog.Asset {
	return catalog.Asset{
		ID: id, URI: "file:///media/" + id + ".jpg", Path: "/media/" + id + ".jpg",
		MediaType: catalog.MediaTypeImage, Width: w, Height: h,
	}
}

func videoAsset(id string, seconds float64) catalog.Asset {
	return catalog.Asset{
		ID: id, URI: "file:///media/" + id + ".mp4", Path: "/media/" + id + ".mp4",
		MediaType: catalog.MediaTypeVideo, Width: 1920, Height: 1080, DurationSeconds: seconds,
	}
}

type fixture struct {
	cfg       *config.Config
	store     *session.Store
	library   stubLibrary
	processor *stubProcessor
	publisher *stubPublisher
	comp      *composer.Composer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sess := testsupport.NewDraft(t, store)

	f := &fixture{
		cfg:   cfg,
		store: store,
		library: stubLibrary{
			"img-1": imageAsset("img-1", 1000, 1000),
			"img-2": imageAsset("img-2", 3000, 2000),
			"img-3": imageAsset("img-3", 800, 1200),
			"img-4": imageAsset("img-4", 640, 480),
			"img-5": imageAsset("img-5", 1024, 1024),
			"img-6": imageAsset("img-6", 1024, 768),
			"vid-short": videoAsset("vid-short", 10),
			"vid-long":  videoAsset("vid-long", 30),
		},
		processor: &stubProcessor{},
		publisher: &stubPublisher{},
	}
	comp, err := composer.New(cfg, store, f.library, f.processor, f.publisher, logging.NewNop(), sess)
	if err != nil {
		t.Fatalf("composer.New: %v", err)
	}
	f.comp = comp
	return f
}

func (f *fixture) selectImages(t *testing.T, ids ...string) {
	t.Helper()
	ctx := context.Background()
	if err := f.comp.OpenGallery(ctx, catalog.MediaTypeImage); err != nil {
		t.Fatalf("OpenGallery: %v", err)
	}
	for _, id := range ids {
		if err := f.comp.ToggleAsset(ctx, id); err != nil {
			t.Fatalf("ToggleAsset(%s): %v", id, err)
		}
	}
}

func TestGalleryGuardsCapacityAndExclusivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.selectImages(t, "img-1", "img-2", "img-3", "img-4", "img-5")
	if err := f.comp.ToggleAsset(ctx, "img-6"); !errors.Is(err, services.ErrCapacity) {
		t.Fatalf("sixth image should hit capacity, got %v", err)
	}
	if err := f.comp.ToggleAsset(ctx, "vid-short"); !errors.Is(err, services.ErrCapacity) {
		t.Fatalf("video in image selection should be rejected, got %v", err)
	}

	// Deselecting makes room again.
	if err := f.comp.ToggleAsset(ctx, "img-5"); err != nil {
		t.Fatalf("deselect: %v", err)
	}
	if err := f.comp.ToggleAsset(ctx, "img-6"); err != nil {
		t.Fatalf("reselect after deselect: %v", err)
	}
}

func TestGalleryBlockedByAttachedVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.comp.OpenGallery(ctx, catalog.MediaTypeVideo); err != nil {
		t.Fatalf("OpenGallery(video): %v", err)
	}
	if err := f.comp.ToggleAsset(ctx, "vid-short"); err != nil {
		t.Fatalf("ToggleAsset: %v", err)
	}
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if got := f.comp.Mode(); got != session.ModeVideoCrop {
		t.Fatalf("short video should go straight to video_crop, got %s", got)
	}
	if _, err := f.comp.Finalize(ctx, nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if err := f.comp.OpenGallery(ctx, catalog.MediaTypeImage); !errors.Is(err, services.ErrCapacity) {
		t.Fatalf("image gallery must stay closed with a video attached, got %v", err)
	}
	if err := f.comp.OpenGallery(ctx, catalog.MediaTypeVideo); !errors.Is(err, services.ErrCapacity) {
		t.Fatalf("second video must be rejected, got %v", err)
	}
}

func TestConfirmSelectionRequiresAssets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.comp.OpenGallery(ctx, catalog.MediaTypeImage); err != nil {
		t.Fatalf("OpenGallery: %v", err)
	}
	if err := f.comp.ConfirmSelection(ctx); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty confirm should fail validation, got %v", err)
	}
}

func TestLongVideoTakesTrimDetour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.comp.OpenGallery(ctx, catalog.MediaTypeVideo); err != nil {
		t.Fatalf("OpenGallery: %v", err)
	}
	if err := f.comp.ToggleAsset(ctx, "vid-long"); err != nil {
		t.Fatalf("ToggleAsset: %v", err)
	}
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if got := f.comp.Mode(); got != session.ModeVideoTrim {
		t.Fatalf("30s video with 15s cap must detour via video_trim, got %s", got)
	}

	ctl, err := f.comp.ConfigureTrim(300)
	if err != nil {
		t.Fatalf("ConfigureTrim: %v", err)
	}
	if got := ctl.SelectionWidth(); got != 150 {
		t.Errorf("selection width = %v, want 150", got)
	}

	// Drag far past the right edge: start clamps to duration-cap.
	if _, err := f.comp.TrimDrag(10_000); err != nil {
		t.Fatalf("TrimDrag: %v", err)
	}
	start, err := f.comp.EndTrimDrag(ctx)
	if err != nil {
		t.Fatalf("EndTrimDrag: %v", err)
	}
	if start != 15 {
		t.Errorf("clamped start = %v, want 15", start)
	}

	if err := f.comp.ConfirmTrim(ctx); err != nil {
		t.Fatalf("ConfirmTrim: %v", err)
	}
	if got := f.comp.Mode(); got != session.ModeVideoCrop {
		t.Fatalf("trim confirm should land in video_crop, got %s", got)
	}
	if got := f.comp.Session().TrimStartSeconds; got != 15 {
		t.Errorf("persisted trim start = %v, want 15", got)
	}
}

func TestDragLifecyclePersistsOffsetsPerAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.selectImages(t, "img-2", "img-3")
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if got := f.comp.Mode(); got != session.ModeCrop {
		t.Fatalf("mode = %s, want crop", got)
	}
	if err := f.comp.SetRatio(ctx, geometry.RatioSquare); err != nil {
		t.Fatalf("SetRatio: %v", err)
	}

	if err := f.comp.BeginDrag(); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	f.comp.Drag(-40, 0)
	off, err := f.comp.EndDrag(ctx)
	if err != nil {
		t.Fatalf("EndDrag: %v", err)
	}
	if off.X == 0 {
		t.Fatal("drag should have moved the wide image horizontally")
	}

	// Switching assets keeps img-2's accumulator and starts img-3 at center.
	if err := f.comp.ActivateAsset(ctx, "img-3"); err != nil {
		t.Fatalf("ActivateAsset: %v", err)
	}
	sess := f.comp.Session()
	offsets, err := sess.Offsets()
	if err != nil {
		t.Fatalf("Offsets: %v", err)
	}
	if offsets["img-2"].X != off.X {
		t.Errorf("img-2 offset = %+v, want X=%v", offsets["img-2"], off.X)
	}
	if offsets["img-3"] != (geometry.Offset{}) {
		t.Errorf("img-3 should start centered, got %+v", offsets["img-3"])
	}

	// Navigating back restores the saved accumulator.
	if err := f.comp.ActivateAsset(ctx, "img-2"); err != nil {
		t.Fatalf("ActivateAsset: %v", err)
	}
	if err := f.comp.BeginDrag(); err != nil {
		t.Fatalf("BeginDrag after return: %v", err)
	}
	f.comp.Drag(5, 0)
	f.comp.CancelDrag()
	sess = f.comp.Session()
	offsets, _ = sess.Offsets()
	if offsets["img-2"].X != off.X {
		t.Errorf("cancelled drag must not move the accumulator: %+v", offsets["img-2"])
	}
}

func TestPerfectFitDisablesDrag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.selectImages(t, "img-1") // 1000x1000 against the default square ratio
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if !f.comp.ActiveBounds().PerfectFit() {
		t.Fatal("square asset at square ratio should be a perfect fit")
	}
	if err := f.comp.BeginDrag(); !errors.Is(err, services.ErrState) {
		t.Fatalf("drag on a perfect fit must be rejected, got %v", err)
	}
}

func TestRatioChangeResetsOffsets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.selectImages(t, "img-2")
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if err := f.comp.BeginDrag(); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	f.comp.Drag(-30, 0)
	if _, err := f.comp.EndDrag(ctx); err != nil {
		t.Fatalf("EndDrag: %v", err)
	}

	if err := f.comp.SetRatio(ctx, geometry.RatioPortrait); err != nil {
		t.Fatalf("SetRatio: %v", err)
	}
	sess := f.comp.Session()
	offsets, err := sess.Offsets()
	if err != nil {
		t.Fatalf("Offsets: %v", err)
	}
	if len(offsets) != 0 && offsets["img-2"] != (geometry.Offset{}) {
		t.Errorf("ratio change must recenter pans, got %+v", offsets)
	}
	if sess.RatioKind != string(geometry.RatioPortrait) {
		t.Errorf("ratio kind = %s", sess.RatioKind)
	}
}

func TestVideoOnlyRatiosRejectedForImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.selectImages(t, "img-1")
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if err := f.comp.SetRatio(ctx, geometry.RatioVertical); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("9:16 is video-only, got %v", err)
	}
}

func TestFinalizeAppendsToDraftAndResetsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.selectImages(t, "img-1", "img-2")
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	result, err := f.comp.Finalize(ctx, nil)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(result.Media) != 2 {
		t.Fatalf("result media = %d", len(result.Media))
	}

	sess := f.comp.Session()
	if sess.Mode != session.ModeCompose {
		t.Errorf("mode after finalize = %s", sess.Mode)
	}
	draft, err := sess.Processed()
	if err != nil {
		t.Fatalf("Processed: %v", err)
	}
	if len(draft) != 2 {
		t.Errorf("draft media = %d", len(draft))
	}
	selection, _ := sess.Selection()
	if len(selection) != 0 {
		t.Error("selection should clear after finalize")
	}
	offsets, _ := sess.Offsets()
	if len(offsets) != 0 {
		t.Error("offsets should clear after finalize")
	}
}

func TestFinalizeFailureLeavesDraftUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.selectImages(t, "img-1")
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	f.processor.err = services.Wrap(services.ErrMediaTooLarge, "processing", "compress", "too large", nil)

	if _, err := f.comp.Finalize(ctx, nil); !errors.Is(err, services.ErrMediaTooLarge) {
		t.Fatalf("expected pipeline error to surface, got %v", err)
	}
	sess := f.comp.Session()
	if sess.Mode != session.ModeCrop {
		t.Errorf("failed finalize should stay in crop mode, got %s", sess.Mode)
	}
	draft, _ := sess.Processed()
	if len(draft) != 0 {
		t.Error("draft must stay empty after a failed finalize")
	}
	selection, _ := sess.Selection()
	if len(selection) != 1 {
		t.Error("selection must survive a failed finalize for retry")
	}
}

func TestBackDiscardsSessionStateButKeepsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.selectImages(t, "img-1")
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if _, err := f.comp.Finalize(ctx, nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	f.selectImages(t, "img-2")
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if err := f.comp.Back(ctx); err != nil {
		t.Fatalf("Back: %v", err)
	}

	sess := f.comp.Session()
	if sess.Mode != session.ModeCompose {
		t.Errorf("mode = %s", sess.Mode)
	}
	draft, _ := sess.Processed()
	if len(draft) != 1 || draft[0].AssetID != "img-1" {
		t.Errorf("finalized media should survive back-navigation, got %+v", draft)
	}
	selection, _ := sess.Selection()
	if len(selection) != 0 {
		t.Error("selection should be discarded on back")
	}
}

func TestCloseCheckDiffsTextAndMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dirty, err := f.comp.CloseCheck()
	if err != nil {
		t.Fatalf("CloseCheck: %v", err)
	}
	if dirty {
		t.Error("fresh session should close without confirmation")
	}

	if err := f.comp.SetText(ctx, "hello"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if dirty, _ = f.comp.CloseCheck(); !dirty {
		t.Error("text change should require confirmation")
	}
	if err := f.comp.SetText(ctx, ""); err != nil {
		t.Fatalf("SetText: %v", err)
	}

	f.selectImages(t, "img-1")
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if _, err := f.comp.Finalize(ctx, nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if dirty, _ = f.comp.CloseCheck(); !dirty {
		t.Error("media change should require confirmation even with unchanged text")
	}
}

func TestCloseCheckCleanForUnchangedEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	images := []string{"https://cdn.example/a.jpg", "https://cdn.example/b.jpg"}
	if err := f.comp.SeedFromPost(ctx, "post-9", "original", images, nil); err != nil {
		t.Fatalf("SeedFromPost: %v", err)
	}
	dirty, err := f.comp.CloseCheck()
	if err != nil {
		t.Fatalf("CloseCheck: %v", err)
	}
	if dirty {
		t.Error("unchanged edit should close without confirmation")
	}

	if err := f.comp.SetText(ctx, "edited"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if dirty, _ = f.comp.CloseCheck(); !dirty {
		t.Error("edited text should require confirmation against the seed")
	}
}

func TestRemoveMediaFreesCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.comp.OpenGallery(ctx, catalog.MediaTypeVideo); err != nil {
		t.Fatalf("OpenGallery: %v", err)
	}
	if err := f.comp.ToggleAsset(ctx, "vid-short"); err != nil {
		t.Fatalf("ToggleAsset: %v", err)
	}
	if err := f.comp.ConfirmSelection(ctx); err != nil {
		t.Fatalf("ConfirmSelection: %v", err)
	}
	if _, err := f.comp.Finalize(ctx, nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if err := f.comp.RemoveMedia(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("removing unknown media should fail, got %v", err)
	}
	if err := f.comp.RemoveMedia(ctx, "vid-short"); err != nil {
		t.Fatalf("RemoveMedia: %v", err)
	}
	if err := f.comp.OpenGallery(ctx, catalog.MediaTypeImage); err != nil {
		t.Fatalf("image gallery should reopen once the video is removed: %v", err)
	}
}

func TestPublishLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.comp.SetText(ctx, "ship it"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if err := f.comp.Publish(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if f.publisher.calls != 1 {
		t.Fatalf("publisher calls = %d", f.publisher.calls)
	}
	sess := f.comp.Session()
	if sess.Status != session.StatusPublished {
		t.Errorf("status = %s", sess.Status)
	}

	// Published sessions are terminal.
	if err := f.comp.SetText(ctx, "more"); !errors.Is(err, services.ErrState) {
		t.Fatalf("edit after publish should fail, got %v", err)
	}
	if err := f.comp.Publish(ctx); !errors.Is(err, services.ErrState) {
		t.Fatalf("re-publish should fail, got %v", err)
	}
}

func TestCloseBlockedWhilePublishing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.comp.SetText(ctx, "hold"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	// Simulate an in-flight publish: the publisher leaves the session in
	// publishing state.
	f.publisher.err = errors.New("interrupted")
	blockedDuringRun := false
	f.publisher.errHook = func(sess *session.Session) {
		if _, err := f.comp.CloseCheck(); errors.Is(err, composer.ErrPublishInFlight) {
			blockedDuringRun = true
		}
		if err := f.comp.Discard(ctx); !errors.Is(err, composer.ErrPublishInFlight) {
			t.Errorf("discard during publish should be blocked, got %v", err)
		}
	}

	_ = f.comp.Publish(ctx)
	if !blockedDuringRun {
		t.Error("close must be blocked while the upload sequence runs")
	}
}
