package geometry

import "math"

// Frame is the on-screen crop viewport, in display points.
type Frame struct {
	Width  float64
	Height float64
}

// RenderSize is the size an asset is drawn at behind the crop frame.
type RenderSize struct {
	Width  float64
	Height float64
}

// Offset is a pan translation in crop-frame pixel space. Positive X moves
// the rendered asset right, positive Y moves it down.
type Offset struct {
	X float64
	Y float64
}

// Bounds is the maximum pan distance from center per axis.
type Bounds struct {
	MaxX float64
	MaxY float64
}

// PerfectFit reports whether the asset matches the crop ratio exactly,
// leaving no room to pan. The surface renders such assets non-interactive.
func (b Bounds) PerfectFit() bool {
	return b.MaxX == 0 && b.MaxY == 0
}

// Clamp confines an offset to [-Max, +Max] per axis.
func (b Bounds) Clamp(off Offset) Offset {
	return Offset{
		X: clampFloat(off.X, -b.MaxX, b.MaxX),
		Y: clampFloat(off.Y, -b.MaxY, b.MaxY),
	}
}

// Rect is a crop rectangle in the asset's native pixel coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ScaledDimensions computes the size an asset renders at so it fills the
// crop frame. Assets wider than the ratio pin their height to the frame
// and overshoot horizontally, leaving room to pan sideways; taller assets
// pin their width and overshoot vertically. A ratio-matched asset renders
// exactly frame-sized.
func ScaledDimensions(assetWidth, assetHeight int, ratio AspectRatio, frame Frame) RenderSize {
	if assetWidth <= 0 || assetHeight <= 0 || ratio.Ratio <= 0 || frame.Width <= 0 || frame.Height <= 0 {
		return RenderSize{}
	}
	assetRatio := float64(assetWidth) / float64(assetHeight)
	if assetRatio > ratio.Ratio {
		return RenderSize{
			Width:  frame.Height * assetRatio / ratio.Ratio,
			Height: frame.Height,
		}
	}
	return RenderSize{
		Width:  frame.Width,
		Height: frame.Width / assetRatio,
	}
}

// PanBounds derives the pan range the render leaves open around the frame.
// Renders no larger than the frame on an axis yield zero for that axis.
func PanBounds(render RenderSize, frame Frame) Bounds {
	return Bounds{
		MaxX: math.Max(0, (render.Width-frame.Width)/2),
		MaxY: math.Max(0, (render.Height-frame.Height)/2),
	}
}

// CropRect converts a persisted pan offset into the exact source-space
// rectangle to cut. The crop spans the asset's constrained dimension in
// full and derives the other from the ratio; the origin starts centered,
// shifts by -offset translated back to native pixels, and is clamped so
// the rectangle never leaves the source.
func CropRect(assetWidth, assetHeight int, ratio AspectRatio, offset Offset, render RenderSize) Rect {
	if assetWidth <= 0 || assetHeight <= 0 || ratio.Ratio <= 0 || render.Width <= 0 {
		return Rect{}
	}
	assetRatio := float64(assetWidth) / float64(assetHeight)
	var cropWidth, cropHeight float64
	if assetRatio > ratio.Ratio {
		cropHeight = float64(assetHeight)
		cropWidth = cropHeight * ratio.Ratio
	} else {
		cropWidth = float64(assetWidth)
		cropHeight = cropWidth / ratio.Ratio
	}

	scale := render.Width / float64(assetWidth)
	x := (float64(assetWidth)-cropWidth)/2 - offset.X/scale
	y := (float64(assetHeight)-cropHeight)/2 - offset.Y/scale
	x = clampFloat(x, 0, float64(assetWidth)-cropWidth)
	y = clampFloat(y, 0, float64(assetHeight)-cropHeight)

	width := int(math.Round(cropWidth))
	height := int(math.Round(cropHeight))
	if width > assetWidth {
		width = assetWidth
	}
	if height > assetHeight {
		height = assetHeight
	}
	rect := Rect{X: int(math.Round(x)), Y: int(math.Round(y)), Width: width, Height: height}
	if rect.X < 0 {
		rect.X = 0
	}
	if rect.Y < 0 {
		rect.Y = 0
	}
	if rect.X+rect.Width > assetWidth {
		rect.X = assetWidth - rect.Width
	}
	if rect.Y+rect.Height > assetHeight {
		rect.Y = assetHeight - rect.Height
	}
	return rect
}

// OutputFrame is the crop frame sized to the ratio's output resolution.
// Editing and finalize both render against this frame, so a persisted
// offset maps to the same source pixels on every run.
func OutputFrame(ratio AspectRatio) Frame {
	return Frame{Width: float64(ratio.OutputWidth), Height: float64(ratio.OutputHeight)}
}

// PreviewFrame fits a crop frame of the selected ratio into the viewport,
// spanning the full width and shrinking by height first when the derived
// height would overflow the cap.
func PreviewFrame(viewportWidth, heightCap float64, ratio AspectRatio) Frame {
	if viewportWidth <= 0 || heightCap <= 0 || ratio.Ratio <= 0 {
		return Frame{}
	}
	width := viewportWidth
	height := width / ratio.Ratio
	if height > heightCap {
		height = heightCap
		width = height * ratio.Ratio
	}
	return Frame{Width: width, Height: height}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
