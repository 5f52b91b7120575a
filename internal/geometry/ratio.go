package geometry

import (
	"fmt"
	"strings"
)

// RatioKind identifies one selectable aspect ratio.
type RatioKind string

const (
	RatioSquare     RatioKind = "square"
	RatioPortrait   RatioKind = "portrait"
	RatioLandscape  RatioKind = "landscape"
	RatioVertical   RatioKind = "vertical"
	RatioWidescreen RatioKind = "widescreen"
)

// DefaultRatioKind is the ratio a fresh crop session starts with.
const DefaultRatioKind = RatioSquare

// AspectRatio describes one selectable crop ratio together with the fixed
// output resolution processed media is rendered at.
type AspectRatio struct {
	Kind         RatioKind
	Label        string
	Ratio        float64 // width divided by height
	OutputWidth  int
	OutputHeight int
}

// The first imageRatioCount entries form the image set; the full table is
// the video set. Vertical and widescreen apply to video only.
var ratios = []AspectRatio{
	{Kind: RatioSquare, Label: "1:1", Ratio: 1.0, OutputWidth: 1080, OutputHeight: 1080},
	{Kind: RatioPortrait, Label: "4:5", Ratio: 4.0 / 5.0, OutputWidth: 1080, OutputHeight: 1350},
	{Kind: RatioLandscape, Label: "1.91:1", Ratio: 1.91, OutputWidth: 1080, OutputHeight: 566},
	{Kind: RatioVertical, Label: "9:16", Ratio: 9.0 / 16.0, OutputWidth: 1080, OutputHeight: 1920},
	{Kind: RatioWidescreen, Label: "16:9", Ratio: 16.0 / 9.0, OutputWidth: 1920, OutputHeight: 1080},
}

const imageRatioCount = 3

var byKind map[RatioKind]*AspectRatio

func init() {
	byKind = make(map[RatioKind]*AspectRatio, len(ratios))
	for i := range ratios {
		byKind[ratios[i].Kind] = &ratios[i]
	}
}

// ImageRatios returns the ratio set selectable for image drafts.
func ImageRatios() []AspectRatio {
	return append([]AspectRatio(nil), ratios[:imageRatioCount]...)
}

// VideoRatios returns the ratio set selectable for video drafts.
func VideoRatios() []AspectRatio {
	return append([]AspectRatio(nil), ratios...)
}

// RatioByKind looks up a ratio across both sets.
func RatioByKind(kind RatioKind) (AspectRatio, bool) {
	r, ok := byKind[kind]
	if !ok {
		return AspectRatio{}, false
	}
	return *r, true
}

// ImageRatioByKind looks up a ratio within the image set only.
func ImageRatioByKind(kind RatioKind) (AspectRatio, bool) {
	for _, r := range ratios[:imageRatioCount] {
		if r.Kind == kind {
			return r, true
		}
	}
	return AspectRatio{}, false
}

// VideoRatioByKind looks up a ratio within the video set.
func VideoRatioByKind(kind RatioKind) (AspectRatio, bool) {
	return RatioByKind(kind)
}

// ParseRatioKind normalizes user input ("Portrait", " 4:5 ") into a
// RatioKind, accepting both kind names and display labels.
func ParseRatioKind(input string) (RatioKind, error) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return "", fmt.Errorf("aspect ratio is empty")
	}
	for _, r := range ratios {
		if needle == string(r.Kind) || needle == strings.ToLower(r.Label) {
			return r.Kind, nil
		}
	}
	return "", fmt.Errorf("unknown aspect ratio %q", input)
}
