// Package geometry implements the crop layout math for the composition
// pipeline: render dimensions, pan bounds, source-space crop rectangles,
// and preview frame sizing.
//
// The primary operations are:
//   - Scaling an asset so it fills the crop frame of a selected ratio
//   - Deriving the pan range the frame leaves open per axis
//   - Converting a persisted pan offset into an exact native-pixel crop
//   - Fitting the crop frame itself into the available viewport
//
// All functions are pure and deterministic. The crop rectangle is the
// contract with the processing pipeline, which cuts pixels with it
// verbatim, so equal inputs always produce identical rectangles.
// Degenerate inputs short-circuit to zero values instead of errors;
// callers reject unusable assets before they reach this package.
package geometry
