package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func mustRatio(t *testing.T, kind RatioKind) AspectRatio {
	t.Helper()
	r, ok := RatioByKind(kind)
	if !ok {
		t.Fatalf("ratio %q not registered", kind)
	}
	return r
}

func TestScaledDimensionsPortraitFrame(t *testing.T) {
	// 1000x1000 square asset against the 4:5 frame: height pins to the
	// frame, width overshoots to 625 leaving 112.5 of pan per side.
	portrait := mustRatio(t, RatioPortrait)
	frame := Frame{Width: 400, Height: 500}

	render := ScaledDimensions(1000, 1000, portrait, frame)
	if !almostEqual(render.Width, 625) || !almostEqual(render.Height, 500) {
		t.Fatalf("ScaledDimensions() = %+v, want 625x500", render)
	}

	bounds := PanBounds(render, frame)
	if !almostEqual(bounds.MaxX, 112.5) {
		t.Errorf("MaxX = %v, want 112.5", bounds.MaxX)
	}
	if !almostEqual(bounds.MaxY, 0) {
		t.Errorf("MaxY = %v, want 0", bounds.MaxY)
	}
}

func TestScaledDimensionsTallAsset(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	frame := Frame{Width: 400, Height: 500}

	render := ScaledDimensions(400, 1000, portrait, frame)
	if !almostEqual(render.Width, 400) || !almostEqual(render.Height, 1000) {
		t.Fatalf("ScaledDimensions() = %+v, want 400x1000", render)
	}

	bounds := PanBounds(render, frame)
	if !almostEqual(bounds.MaxX, 0) || !almostEqual(bounds.MaxY, 250) {
		t.Errorf("PanBounds() = %+v, want (0, 250)", bounds)
	}
}

func TestScaledDimensionsWideAssetSquareFrame(t *testing.T) {
	square := mustRatio(t, RatioSquare)
	frame := Frame{Width: 400, Height: 400}

	render := ScaledDimensions(2000, 1000, square, frame)
	if !almostEqual(render.Width, 800) || !almostEqual(render.Height, 400) {
		t.Fatalf("ScaledDimensions() = %+v, want 800x400", render)
	}

	bounds := PanBounds(render, frame)
	if !almostEqual(bounds.MaxX, 200) || !almostEqual(bounds.MaxY, 0) {
		t.Errorf("PanBounds() = %+v, want (200, 0)", bounds)
	}
}

func TestScaledDimensionsPerfectFit(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	frame := Frame{Width: 400, Height: 500}

	render := ScaledDimensions(800, 1000, portrait, frame)
	if !almostEqual(render.Width, 400) || !almostEqual(render.Height, 500) {
		t.Fatalf("ScaledDimensions() = %+v, want frame-sized 400x500", render)
	}

	bounds := PanBounds(render, frame)
	if !bounds.PerfectFit() {
		t.Errorf("PerfectFit() = false for ratio-matched asset, bounds %+v", bounds)
	}
}

func TestScaledDimensionsDegenerate(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	frame := Frame{Width: 400, Height: 500}

	tests := []struct {
		name   string
		width  int
		height int
		ratio  AspectRatio
		frame  Frame
	}{
		{"zero width", 0, 1000, portrait, frame},
		{"zero height", 1000, 0, portrait, frame},
		{"negative width", -1, 500, portrait, frame},
		{"zero ratio", 1000, 1000, AspectRatio{}, frame},
		{"zero frame", 1000, 1000, portrait, Frame{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaledDimensions(tt.width, tt.height, tt.ratio, tt.frame)
			if got != (RenderSize{}) {
				t.Errorf("ScaledDimensions() = %+v, want zero", got)
			}
		})
	}
}

func TestPanBoundsNeverNegative(t *testing.T) {
	bounds := PanBounds(RenderSize{Width: 300, Height: 200}, Frame{Width: 400, Height: 500})
	if bounds.MaxX != 0 || bounds.MaxY != 0 {
		t.Errorf("PanBounds(render smaller than frame) = %+v, want (0, 0)", bounds)
	}
}

func TestBoundsClamp(t *testing.T) {
	b := Bounds{MaxX: 100, MaxY: 50}

	tests := []struct {
		name string
		in   Offset
		want Offset
	}{
		{"inside", Offset{X: 30, Y: -20}, Offset{X: 30, Y: -20}},
		{"beyond positive", Offset{X: 150, Y: 80}, Offset{X: 100, Y: 50}},
		{"beyond negative", Offset{X: -150, Y: -80}, Offset{X: -100, Y: -50}},
		{"at edge", Offset{X: 100, Y: -50}, Offset{X: 100, Y: -50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Clamp(tt.in)
			if got != tt.want {
				t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCropRectCentered(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	frame := Frame{Width: 400, Height: 500}
	render := ScaledDimensions(1000, 1000, portrait, frame)

	rect := CropRect(1000, 1000, portrait, Offset{}, render)
	want := Rect{X: 100, Y: 0, Width: 800, Height: 1000}
	if rect != want {
		t.Errorf("CropRect(centered) = %+v, want %+v", rect, want)
	}
}

func TestCropRectTranslatesPan(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	frame := Frame{Width: 400, Height: 500}
	render := ScaledDimensions(1000, 1000, portrait, frame)

	// Render scale is 0.625, so 31.25 frame pixels shift the source
	// window by 50 native pixels in the opposite direction.
	rect := CropRect(1000, 1000, portrait, Offset{X: 31.25}, render)
	if rect.X != 50 {
		t.Errorf("X = %d, want 50", rect.X)
	}

	rect = CropRect(1000, 1000, portrait, Offset{X: -31.25}, render)
	if rect.X != 150 {
		t.Errorf("X = %d, want 150", rect.X)
	}
}

func TestCropRectClampsAtExtremes(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	frame := Frame{Width: 400, Height: 500}
	render := ScaledDimensions(1000, 1000, portrait, frame)
	bounds := PanBounds(render, frame)

	left := CropRect(1000, 1000, portrait, Offset{X: bounds.MaxX}, render)
	if left.X != 0 {
		t.Errorf("X at +MaxX pan = %d, want 0", left.X)
	}

	right := CropRect(1000, 1000, portrait, Offset{X: -bounds.MaxX}, render)
	if right.X != 200 {
		t.Errorf("X at -MaxX pan = %d, want 200", right.X)
	}
	if right.X+right.Width != 1000 {
		t.Errorf("right edge = %d, want 1000", right.X+right.Width)
	}
}

func TestCropRectTallAsset(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	frame := Frame{Width: 400, Height: 500}
	render := ScaledDimensions(400, 1000, portrait, frame)

	rect := CropRect(400, 1000, portrait, Offset{}, render)
	want := Rect{X: 0, Y: 250, Width: 400, Height: 500}
	if rect != want {
		t.Errorf("CropRect(centered) = %+v, want %+v", rect, want)
	}

	// Scale is 1.0 here, so frame pixels map 1:1 to native pixels.
	rect = CropRect(400, 1000, portrait, Offset{Y: 150}, render)
	if rect.Y != 100 {
		t.Errorf("Y = %d, want 100", rect.Y)
	}
}

func TestCropRectAlwaysInsideSource(t *testing.T) {
	frames := Frame{Width: 400, Height: 500}
	assets := []struct{ width, height int }{
		{1000, 1000},
		{800, 1000},
		{400, 1000},
		{2000, 1000},
		{8000, 2000},
		{1013, 777},
		{1, 1},
		{3, 97},
	}

	for _, ratio := range VideoRatios() {
		frame := PreviewFrame(frames.Width, frames.Height, ratio)
		for _, asset := range assets {
			render := ScaledDimensions(asset.width, asset.height, ratio, frame)
			bounds := PanBounds(render, frame)
			offsets := []Offset{
				{},
				{X: bounds.MaxX, Y: bounds.MaxY},
				{X: -bounds.MaxX, Y: -bounds.MaxY},
				{X: bounds.MaxX / 3, Y: -bounds.MaxY / 3},
				{X: 2*bounds.MaxX + 10, Y: -2*bounds.MaxY - 10},
			}
			for _, off := range offsets {
				rect := CropRect(asset.width, asset.height, ratio, off, render)
				if rect.Empty() {
					t.Fatalf("%s %dx%d offset %+v: empty rect", ratio.Kind, asset.width, asset.height, off)
				}
				if rect.X < 0 || rect.Y < 0 ||
					rect.X+rect.Width > asset.width || rect.Y+rect.Height > asset.height {
					t.Fatalf("%s %dx%d offset %+v: rect %+v outside source",
						ratio.Kind, asset.width, asset.height, off, rect)
				}
			}
		}
	}
}

func TestCropRectIdempotent(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	frame := Frame{Width: 400, Height: 500}
	render := ScaledDimensions(1013, 777, portrait, frame)
	off := Offset{X: 17.3, Y: -4.9}

	first := CropRect(1013, 777, portrait, off, render)
	second := CropRect(1013, 777, portrait, off, render)
	if first != second {
		t.Errorf("repeat call differs: %+v vs %+v", first, second)
	}
}

func TestCropRectDegenerate(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	if got := CropRect(0, 1000, portrait, Offset{}, RenderSize{Width: 400, Height: 500}); got != (Rect{}) {
		t.Errorf("CropRect(zero width asset) = %+v, want zero", got)
	}
	if got := CropRect(1000, 1000, portrait, Offset{}, RenderSize{}); got != (Rect{}) {
		t.Errorf("CropRect(zero render) = %+v, want zero", got)
	}
}

func TestPreviewFrame(t *testing.T) {
	tests := []struct {
		name       string
		viewport   float64
		cap        float64
		kind       RatioKind
		wantWidth  float64
		wantHeight float64
	}{
		{"portrait fits", 400, 500, RatioPortrait, 400, 500},
		{"portrait capped", 400, 300, RatioPortrait, 240, 300},
		{"square fits", 400, 500, RatioSquare, 400, 400},
		{"landscape fits", 400, 500, RatioLandscape, 400, 400 / 1.91},
		{"vertical capped", 400, 500, RatioVertical, 281.25, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio := mustRatio(t, tt.kind)
			got := PreviewFrame(tt.viewport, tt.cap, ratio)
			if !almostEqual(got.Width, tt.wantWidth) || !almostEqual(got.Height, tt.wantHeight) {
				t.Errorf("PreviewFrame() = %+v, want %vx%v", got, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestOutputFrameMatchesRatioResolution(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	got := OutputFrame(portrait)
	if got.Width != 1080 || got.Height != 1350 {
		t.Errorf("OutputFrame(portrait) = %+v, want 1080x1350", got)
	}
	if !almostEqual(got.Width/got.Height, portrait.Ratio) {
		t.Errorf("OutputFrame aspect = %v, want %v", got.Width/got.Height, portrait.Ratio)
	}
}

func TestPreviewFrameDegenerate(t *testing.T) {
	portrait := mustRatio(t, RatioPortrait)
	if got := PreviewFrame(0, 500, portrait); got != (Frame{}) {
		t.Errorf("PreviewFrame(zero viewport) = %+v, want zero", got)
	}
	if got := PreviewFrame(400, 0, portrait); got != (Frame{}) {
		t.Errorf("PreviewFrame(zero cap) = %+v, want zero", got)
	}
}
